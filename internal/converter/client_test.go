package converter

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

// fakeService stands in for the external conversion provider. Behavior is
// tweaked per test through the fail* switches.
type fakeService struct {
	t           *testing.T
	failUpload  bool
	failConvert bool
	failFetch   bool

	uploadedName string
	uploadedData []byte
	gotAuth      string
}

func (s *fakeService) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/files/upload", func(w http.ResponseWriter, r *http.Request) {
		s.gotAuth = r.Header.Get("Authorization")
		var req struct {
			Filename string `json:"filename"`
			Data     string `json:"data"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.t.Errorf("upload body not JSON: %v", err)
		}
		s.uploadedName = req.Filename
		s.uploadedData, _ = base64.StdEncoding.DecodeString(req.Data)

		if s.failUpload {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"url": "http://" + r.Host + "/files/abc123"})
	})

	mux.HandleFunc("/convert", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			URL    string `json:"url"`
			Format string `json:"format"`
			Sync   bool   `json:"sync"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if req.Format != "pdf" || !req.Sync {
			s.t.Errorf("unexpected convert request: %+v", req)
		}
		if s.failConvert {
			json.NewEncoder(w).Encode(map[string]string{"error": "unsupported layout"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"url": "http://" + r.Host + "/files/abc123.pdf"})
	})

	mux.HandleFunc("/files/abc123.pdf", func(w http.ResponseWriter, r *http.Request) {
		if s.failFetch {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("%PDF-1.4 fake"))
	})

	return mux
}

func newTestClient(t *testing.T, svc *fakeService) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(svc.handler())
	t.Cleanup(server.Close)
	return NewClient(server.URL, "test-key", zap.NewNop()), server
}

func TestConvertDocxToPDFHappyPath(t *testing.T) {
	svc := &fakeService{t: t}
	client, _ := newTestClient(t, svc)

	docx := []byte("conteudo docx")
	pdf, err := client.ConvertDocxToPDF(context.Background(), docx, "Proposta-PRP-0001.docx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF-")) {
		t.Errorf("did not receive PDF bytes: %q", pdf)
	}
	if svc.uploadedName != "Proposta-PRP-0001.docx" {
		t.Errorf("uploaded filename = %q", svc.uploadedName)
	}
	if !bytes.Equal(svc.uploadedData, docx) {
		t.Errorf("uploaded payload does not round-trip base64")
	}
	if svc.gotAuth != "Bearer test-key" {
		t.Errorf("missing bearer auth: %q", svc.gotAuth)
	}
}

func TestConvertDocxToPDFUploadFailure(t *testing.T) {
	svc := &fakeService{t: t, failUpload: true}
	client, _ := newTestClient(t, svc)

	_, err := client.ConvertDocxToPDF(context.Background(), []byte("x"), "a.docx")
	if !errors.Is(err, ErrProcessar) {
		t.Fatalf("got %v, want ErrProcessar", err)
	}
	// Category error only; no upstream detail in the message.
	if err.Error() != "falha ao processar o documento" {
		t.Errorf("error leaks detail: %q", err.Error())
	}
}

func TestConvertDocxToPDFConvertFailure(t *testing.T) {
	svc := &fakeService{t: t, failConvert: true}
	client, _ := newTestClient(t, svc)

	_, err := client.ConvertDocxToPDF(context.Background(), []byte("x"), "a.docx")
	if !errors.Is(err, ErrConverter) {
		t.Fatalf("got %v, want ErrConverter", err)
	}
	if err.Error() != "falha ao converter o documento" {
		t.Errorf("error leaks detail: %q", err.Error())
	}
}

func TestConvertDocxToPDFFetchFailure(t *testing.T) {
	svc := &fakeService{t: t, failFetch: true}
	client, _ := newTestClient(t, svc)

	_, err := client.ConvertDocxToPDF(context.Background(), []byte("x"), "a.docx")
	if !errors.Is(err, ErrConverter) {
		t.Fatalf("got %v, want ErrConverter", err)
	}
}

func TestConvertDocxToPDFUnreachableService(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", "key", zap.NewNop())
	_, err := client.ConvertDocxToPDF(context.Background(), []byte("x"), "a.docx")
	if !errors.Is(err, ErrProcessar) {
		t.Fatalf("got %v, want ErrProcessar", err)
	}
}
