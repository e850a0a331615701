package main

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-bulb/engine/camera"
	"github.com/Carmen-Shannon/oxy-bulb/engine/settings"
)

func TestParsePosition(t *testing.T) {
	tests := []struct {
		in      string
		want    [3]float32
		wantErr bool
	}{
		{in: "0,0,3.2", want: [3]float32{0, 0, 3.2}},
		{in: " 1.5, -2 ,0.25", want: [3]float32{1.5, -2, 0.25}},
		{in: "1,2", wantErr: true},
		{in: "1,2,3,4", wantErr: true},
		{in: "a,b,c", wantErr: true},
		{in: "1,NaN,3", wantErr: true},
		{in: "1,2,Inf", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parsePosition(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func baseOptions() options {
	return options{
		width:    64,
		height:   32,
		denoise:  -1,
		enhance:  true,
		mode:     settings.ModeNormal,
		yaw:      0.5,
		pitch:    -0.25,
		position: "1,2,3",
	}
}

func TestBuildRequestCarriesCamera(t *testing.T) {
	req, err := buildRequest(baseOptions())
	if err != nil {
		t.Fatalf("buildRequest: %v", err)
	}
	state, err := camera.UnmarshalState(req.StateBuffer)
	if err != nil {
		t.Fatalf("state buffer: %v", err)
	}
	if state.Yaw != 0.5 || state.Pitch != -0.25 || state.Position != [3]float32{1, 2, 3} {
		t.Fatalf("unexpected state %+v", state)
	}
	if state.FOV != camera.DefaultFOV {
		t.Fatalf("expected default FOV, got %v", state.FOV)
	}
	if req.Settings.Mode != settings.ModeNormal {
		t.Fatalf("expected mode %d, got %d", settings.ModeNormal, req.Settings.Mode)
	}
	if req.Width != 64 || req.Height != 32 {
		t.Fatalf("unexpected size %dx%d", req.Width, req.Height)
	}
}

func TestBuildRequestProfileDefaults(t *testing.T) {
	req, err := buildRequest(baseOptions())
	if err != nil {
		t.Fatalf("buildRequest: %v", err)
	}
	p := settings.SelectProfile(false, settings.DeviceDesktop)
	if req.SampleCount != p.SampleCount || req.DenoiseStrength != p.DenoiseStrength {
		t.Fatalf("expected profile sampling, got %d samples denoise %v", req.SampleCount, req.DenoiseStrength)
	}
	if req.WatermarkText != settings.DefaultWatermark {
		t.Fatalf("locked export should carry the default watermark, got %q", req.WatermarkText)
	}
}

func TestBuildRequestOverrides(t *testing.T) {
	opts := baseOptions()
	opts.samples = 3
	opts.denoise = 0
	opts.enhance = false
	opts.fov = 0.8
	opts.unlocked = true
	opts.watermark = "studio"

	req, err := buildRequest(opts)
	if err != nil {
		t.Fatalf("buildRequest: %v", err)
	}
	if req.SampleCount != 3 || req.DenoiseStrength != 0 || req.AutoEnhance {
		t.Fatalf("overrides not applied: %+v", req)
	}
	if req.WatermarkText != "studio" {
		t.Fatalf("expected custom watermark, got %q", req.WatermarkText)
	}
	state, _ := camera.UnmarshalState(req.StateBuffer)
	if state.FOV != 0.8 {
		t.Fatalf("expected FOV 0.8, got %v", state.FOV)
	}
}

func TestBuildRequestBadPosition(t *testing.T) {
	opts := baseOptions()
	opts.position = "nowhere"
	if _, err := buildRequest(opts); err == nil {
		t.Fatal("expected error for bad position")
	}
}
