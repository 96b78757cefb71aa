package voiceagent

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"strings"
	"testing"
)

func TestAppendPCM16Validation(t *testing.T) {
	// Validation failures happen before the wire is touched.
	c := &Client{}

	if err := c.AppendPCM16(context.Background(), []byte{1, 2, 3}); err == nil {
		t.Error("expected error for odd byte count")
	}

	big := make([]byte, 2*1024*1024)
	if err := c.AppendPCM16(context.Background(), big); err == nil {
		t.Error("expected error for oversized chunk")
	}

	if err := c.AppendPCM16(context.Background(), nil); err != nil {
		t.Errorf("empty data should be a no-op, got %v", err)
	}
}

func TestAudioAssembler(t *testing.T) {
	a := NewAudioAssembler()

	chunk1 := base64.StdEncoding.EncodeToString([]byte{1, 2})
	chunk2 := base64.StdEncoding.EncodeToString([]byte{3, 4})

	if err := a.OnDelta(ResponseAudioDelta{ResponseID: "r1", DeltaBase64: chunk1}); err != nil {
		t.Fatalf("OnDelta: %v", err)
	}
	if err := a.OnDelta(ResponseAudioDelta{ResponseID: "r1", DeltaBase64: chunk2}); err != nil {
		t.Fatalf("OnDelta: %v", err)
	}

	got := a.OnDone("r1")
	want := []byte{1, 2, 3, 4}
	if len(got) != len(want) {
		t.Fatalf("got %d bytes, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("byte %d: got %d, want %d", i, got[i], want[i])
		}
	}

	if buf := a.OnDone("r1"); buf != nil {
		t.Error("second OnDone should return nil")
	}
}

func TestAudioAssemblerRejectsBadBase64(t *testing.T) {
	a := NewAudioAssembler()
	if err := a.OnDelta(ResponseAudioDelta{ResponseID: "r1", DeltaBase64: "!!!not base64!!!"}); err == nil {
		t.Error("expected error for invalid base64")
	}
}

func TestWAVFromPCM16Mono(t *testing.T) {
	pcm := make([]byte, PCM16BytesFor(10, DefaultSampleRate))
	wav := WAVFromPCM16Mono(pcm, DefaultSampleRate)

	if len(wav) != 44+len(pcm) {
		t.Fatalf("wav length %d, want %d", len(wav), 44+len(pcm))
	}
	if !strings.HasPrefix(string(wav[:4]), "RIFF") {
		t.Error("missing RIFF header")
	}
	if string(wav[8:12]) != "WAVE" {
		t.Error("missing WAVE marker")
	}
	if rate := binary.LittleEndian.Uint32(wav[24:]); rate != DefaultSampleRate {
		t.Errorf("sample rate %d, want %d", rate, DefaultSampleRate)
	}
	if dataLen := binary.LittleEndian.Uint32(wav[40:]); int(dataLen) != len(pcm) {
		t.Errorf("data length %d, want %d", dataLen, len(pcm))
	}
}

func TestPCM16BytesFor(t *testing.T) {
	// 1 second at 24kHz, 2 bytes per sample.
	if got := PCM16BytesFor(1000, DefaultSampleRate); got != 48000 {
		t.Errorf("got %d, want 48000", got)
	}
}
