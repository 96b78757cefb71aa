package webrtc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	pion "github.com/pion/webrtc/v3"
)

// HeadlessOptions configures a server-side WebRTC join.
type HeadlessOptions struct {
	BaseURL    string
	Model      string
	Secret     string
	IceServers []pion.ICEServer
	OnMessage  func(msg []byte)
	OnAudioRTP func(pkts uint64)
}

// HeadlessJoin opens a peer connection to the realtime endpoint using an
// ephemeral client secret, attaches the event data channel and a
// receive-only audio transceiver, and blocks until ctx is cancelled.
func HeadlessJoin(ctx context.Context, opt HeadlessOptions) error {
	if opt.BaseURL == "" || opt.Model == "" || opt.Secret == "" {
		return errors.New("base URL, model and secret are required")
	}
	cfg := pion.Configuration{}
	if len(opt.IceServers) > 0 {
		cfg.ICEServers = opt.IceServers
	}
	pc, err := pion.NewPeerConnection(cfg)
	if err != nil {
		return err
	}
	defer pc.Close()

	dc, err := pc.CreateDataChannel("oai-events", nil)
	if err != nil {
		return err
	}
	if opt.OnMessage != nil {
		dc.OnMessage(func(m pion.DataChannelMessage) { opt.OnMessage(m.Data) })
	}
	_, err = pc.AddTransceiverFromKind(pion.RTPCodecTypeAudio, pion.RTPTransceiverInit{
		Direction: pion.RTPTransceiverDirectionRecvonly,
	})
	if err != nil {
		return err
	}

	if opt.OnAudioRTP != nil {
		pc.OnTrack(func(track *pion.TrackRemote, receiver *pion.RTPReceiver) {
			var pkts uint64
			buf := make([]byte, 1500)
			for {
				_, _, e := track.Read(buf)
				if e != nil {
					return
				}
				pkts++
				if pkts%200 == 0 {
					opt.OnAudioRTP(pkts)
				}
			}
		})
	}

	offer, err := pc.CreateOffer(nil)
	if err != nil {
		return err
	}
	if err := pc.SetLocalDescription(offer); err != nil {
		return err
	}

	answer, err := exchangeSDP(ctx, opt, offer.SDP)
	if err != nil {
		return err
	}
	if err := pc.SetRemoteDescription(answer); err != nil {
		return err
	}

	<-ctx.Done()
	return nil
}

// exchangeSDP posts the local offer to the realtime endpoint and returns the
// backend's answer.
func exchangeSDP(ctx context.Context, opt HeadlessOptions, offerSDP string) (pion.SessionDescription, error) {
	url := fmt.Sprintf("%s?model=%s", RealtimeRTCURL(opt.BaseURL), opt.Model)
	req, _ := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBufferString(offerSDP))
	req.Header.Set("Authorization", "Bearer "+opt.Secret)
	req.Header.Set("Content-Type", "application/sdp")
	httpClient := &http.Client{Timeout: 20 * time.Second}
	resp, err := httpClient.Do(req)
	if err != nil {
		return pion.SessionDescription{}, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return pion.SessionDescription{}, err
	}
	if resp.StatusCode/100 != 2 {
		return pion.SessionDescription{}, fmt.Errorf("SDP exchange failed: %d: %s", resp.StatusCode, string(b))
	}
	return pion.SessionDescription{Type: pion.SDPTypeAnswer, SDP: string(b)}, nil
}
