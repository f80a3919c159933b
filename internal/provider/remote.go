package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/blinkwatch/blinkwatch/internal/config"
	"github.com/blinkwatch/blinkwatch/internal/ear"
)

const remoteTimeout = 5 * time.Second

// meshPoint is one landmark in the remote service's response, already in
// pixel coordinates.
type meshPoint struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// detectResponse is the JSON body returned by the remote landmark service.
// Landmarks holds the full face mesh of the first detected face.
type detectResponse struct {
	FaceFound bool        `json:"face_found"`
	Landmarks []meshPoint `json:"landmarks"`
}

// Remote calls an external facial-landmark service over HTTP. The frame
// bytes are POSTed as-is; the service replies with the full face mesh, from
// which Remote selects the configured eyelid indices per eye.
type Remote struct {
	endpoint string
	token    string
	client   *http.Client

	maxFaces      int
	detectionConf float64
	trackingConf  float64

	leftIdx  []int
	rightIdx []int
}

// NewRemote builds a Remote from the provider and tracking configuration.
// The detection knobs (max faces, confidences) are forwarded to the service
// as request headers on every call.
func NewRemote(pc config.ProviderConfig, tc config.TrackingConfig) *Remote {
	return &Remote{
		endpoint:      pc.Endpoint,
		token:         pc.Token(),
		client:        &http.Client{Timeout: remoteTimeout},
		maxFaces:      tc.MaxFaces,
		detectionConf: tc.MinDetectionConfidence,
		trackingConf:  tc.MinTrackingConfidence,
		leftIdx:       append([]int(nil), tc.LeftEyeIndices...),
		rightIdx:      append([]int(nil), tc.RightEyeIndices...),
	}
}

// Detect posts the frame to the remote service and extracts the eyelid
// landmark sets. A "no face" reply returns (nil, nil); transport, status and
// decode failures are provider failures.
func (r *Remote) Detect(ctx context.Context, frame Frame) (*Detection, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(frame.Data))
	if err != nil {
		return nil, fmt.Errorf("remote provider: build request: %w", err)
	}
	req.Header.Set("Content-Type", "image/jpeg")
	req.Header.Set("X-Max-Faces", strconv.Itoa(r.maxFaces))
	req.Header.Set("X-Min-Detection-Confidence", strconv.FormatFloat(r.detectionConf, 'f', -1, 64))
	req.Header.Set("X-Min-Tracking-Confidence", strconv.FormatFloat(r.trackingConf, 'f', -1, 64))
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remote provider: post frame: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("remote provider: unexpected status %d", resp.StatusCode)
	}

	var body detectResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("remote provider: decode response: %w", err)
	}
	if !body.FaceFound {
		return nil, nil
	}

	left, err := selectEye(body.Landmarks, r.leftIdx)
	if err != nil {
		return nil, fmt.Errorf("remote provider: left eye: %w", err)
	}
	right, err := selectEye(body.Landmarks, r.rightIdx)
	if err != nil {
		return nil, fmt.Errorf("remote provider: right eye: %w", err)
	}
	return &Detection{Left: left, Right: right}, nil
}

// Close releases idle connections held by the HTTP client.
func (r *Remote) Close() error {
	r.client.CloseIdleConnections()
	return nil
}

// selectEye picks the configured mesh indices out of the full landmark list,
// preserving their order.
func selectEye(mesh []meshPoint, indices []int) (ear.LandmarkSet, error) {
	set := make(ear.LandmarkSet, 0, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= len(mesh) {
			return nil, fmt.Errorf("mesh index %d out of range (mesh has %d points)", idx, len(mesh))
		}
		set = append(set, ear.Point{X: mesh[idx].X, Y: mesh[idx].Y})
	}
	return set, nil
}

// HTTPSource polls a still-image endpoint (e.g. an IP camera snapshot URL)
// for the current frame once per processed tick.
type HTTPSource struct {
	url    string
	client *http.Client
	seq    uint64
	now    func() time.Time
}

// NewHTTPSource returns a Source reading frames from url.
func NewHTTPSource(url string) *HTTPSource {
	return &HTTPSource{
		url:    url,
		client: &http.Client{Timeout: remoteTimeout},
		now:    time.Now,
	}
}

// Next fetches one frame. Failures are returned to the tick loop, which logs
// and moves on — a missed frame never stops the pipeline.
func (s *HTTPSource) Next(ctx context.Context) (Frame, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return Frame{}, fmt.Errorf("frame source: build request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return Frame{}, fmt.Errorf("frame source: fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Frame{}, fmt.Errorf("frame source: unexpected status %d", resp.StatusCode)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return Frame{}, fmt.Errorf("frame source: read body: %w", err)
	}

	f := Frame{Seq: s.seq, Timestamp: s.now(), Data: buf.Bytes()}
	s.seq++
	return f, nil
}
