package voiceagent

// TextAssembler collects streaming text chunks and reassembles them into
// complete text responses. Use this to handle ResponseTextDelta events and
// reconstruct the full text response.
type TextAssembler struct{ data map[string][]byte }

// NewTextAssembler creates a new TextAssembler instance.
func NewTextAssembler() *TextAssembler { return &TextAssembler{data: make(map[string][]byte)} }

// OnDelta processes a ResponseTextDelta event by appending the text delta.
func (t *TextAssembler) OnDelta(e ResponseTextDelta) {
	t.data[e.ResponseID] = append(t.data[e.ResponseID], []byte(e.Delta)...)
}

// OnDone retrieves and removes the complete text response for a given
// ResponseTextDone event. Prefers the complete text field if the server
// provided one, otherwise returns the assembled deltas.
func (t *TextAssembler) OnDone(e ResponseTextDone) string {
	if e.Text != "" {
		delete(t.data, e.ResponseID)
		return e.Text
	}
	buf := t.data[e.ResponseID]
	delete(t.data, e.ResponseID)
	return string(buf)
}

// TranscriptAssembler reassembles the spoken-audio transcript of assistant
// responses from ResponseAudioTranscriptDelta events. Agent sessions use it
// to log what the assistant said each turn.
type TranscriptAssembler struct{ data map[string][]byte }

// NewTranscriptAssembler creates a new TranscriptAssembler instance.
func NewTranscriptAssembler() *TranscriptAssembler {
	return &TranscriptAssembler{data: make(map[string][]byte)}
}

// OnDelta appends an incremental transcript chunk.
func (t *TranscriptAssembler) OnDelta(e ResponseAudioTranscriptDelta) {
	t.data[e.ResponseID] = append(t.data[e.ResponseID], []byte(e.Delta)...)
}

// OnDone returns the complete transcript for a response, preferring the
// server-provided final transcript when present.
func (t *TranscriptAssembler) OnDone(e ResponseAudioTranscriptDone) string {
	if e.Transcript != "" {
		delete(t.data, e.ResponseID)
		return e.Transcript
	}
	buf := t.data[e.ResponseID]
	delete(t.data, e.ResponseID)
	return string(buf)
}
