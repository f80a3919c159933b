package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/blinkwatch/blinkwatch/internal/config"
)

// mesh builds a fake face mesh big enough to cover the default eye indices.
func mesh(n int) []meshPoint {
	pts := make([]meshPoint, n)
	for i := range pts {
		pts[i] = meshPoint{X: i, Y: i * 2}
	}
	return pts
}

func remoteConfig(endpoint string) (config.ProviderConfig, config.TrackingConfig) {
	cfg := config.Defaults()
	cfg.Provider.Mode = "remote"
	cfg.Provider.Endpoint = endpoint
	return cfg.Provider, cfg.Tracking
}

func TestRemote_Detect(t *testing.T) {
	var gotContentType, gotMaxFaces string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotMaxFaces = r.Header.Get("X-Max-Faces")
		json.NewEncoder(w).Encode(detectResponse{FaceFound: true, Landmarks: mesh(500)})
	}))
	defer srv.Close()

	r := NewRemote(remoteConfig(srv.URL))
	det, err := r.Detect(context.Background(), Frame{Seq: 1, Data: []byte("jpeg")})
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if det == nil {
		t.Fatal("Detect returned no detection for a face_found response")
	}
	if len(det.Left) != 6 || len(det.Right) != 6 {
		t.Errorf("landmark counts = %d/%d, want 6/6", len(det.Left), len(det.Right))
	}
	// Default left index 0 is mesh point 33.
	if det.Left[0].X != 33 || det.Left[0].Y != 66 {
		t.Errorf("Left[0] = %+v, want {33 66}", det.Left[0])
	}
	if gotContentType != "image/jpeg" {
		t.Errorf("Content-Type = %q, want image/jpeg", gotContentType)
	}
	if gotMaxFaces != "1" {
		t.Errorf("X-Max-Faces = %q, want 1", gotMaxFaces)
	}
}

func TestRemote_NoFace(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(detectResponse{FaceFound: false})
	}))
	defer srv.Close()

	r := NewRemote(remoteConfig(srv.URL))
	det, err := r.Detect(context.Background(), Frame{})
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if det != nil {
		t.Error("want nil detection for face_found=false")
	}
}

func TestRemote_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model crashed", http.StatusInternalServerError)
	}))
	defer srv.Close()

	r := NewRemote(remoteConfig(srv.URL))
	if _, err := r.Detect(context.Background(), Frame{}); err == nil {
		t.Error("want provider failure on HTTP 500")
	}
}

func TestRemote_IndexOutOfRange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Mesh shorter than the highest configured index (387).
		json.NewEncoder(w).Encode(detectResponse{FaceFound: true, Landmarks: mesh(10)})
	}))
	defer srv.Close()

	r := NewRemote(remoteConfig(srv.URL))
	if _, err := r.Detect(context.Background(), Frame{}); err == nil {
		t.Error("want error when mesh is shorter than configured indices")
	}
}

func TestHTTPSource_Next(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("frame-bytes"))
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL)
	f, err := src.Next(context.Background())
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if string(f.Data) != "frame-bytes" {
		t.Errorf("Data = %q, want frame-bytes", f.Data)
	}
	if f.Seq != 0 {
		t.Errorf("first Seq = %d, want 0", f.Seq)
	}

	f2, err := src.Next(context.Background())
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if f2.Seq != 1 {
		t.Errorf("second Seq = %d, want 1", f2.Seq)
	}
}
