package upstream

// GenerateContentRequest is the request body for the generateContent
// endpoint of the Generative Language API.
type GenerateContentRequest struct {
	// Contents is the conversation payload. The gateway always sends a
	// single user turn with a single text part.
	Contents []Content `json:"contents"`

	// SystemInstruction carries an optional system prompt.
	SystemInstruction *Content `json:"systemInstruction,omitempty"`

	// GenerationConfig tunes the generation. The gateway only populates it
	// for speech synthesis (response modality and voice).
	GenerationConfig *GenerationConfig `json:"generationConfig,omitempty"`
}

// Content is a single conversation turn.
type Content struct {
	// Role is the author of the turn ("user" or "model"). Optional for
	// system instructions.
	Role string `json:"role,omitempty"`

	// Parts is the content of the turn.
	Parts []Part `json:"parts"`
}

// Part is one piece of content within a turn.
type Part struct {
	// Text is the text content.
	Text string `json:"text"`
}

// GenerationConfig controls model output.
type GenerationConfig struct {
	// ResponseModalities selects the output modality. The speech handler
	// sets this to ["AUDIO"].
	ResponseModalities []string `json:"responseModalities,omitempty"`

	// SpeechConfig selects the synthesis voice.
	SpeechConfig *SpeechConfig `json:"speechConfig,omitempty"`
}

// SpeechConfig configures speech synthesis.
type SpeechConfig struct {
	// VoiceConfig selects the voice.
	VoiceConfig VoiceConfig `json:"voiceConfig"`
}

// VoiceConfig selects a synthesis voice.
type VoiceConfig struct {
	// PrebuiltVoiceConfig names one of the API's built-in voices.
	PrebuiltVoiceConfig PrebuiltVoiceConfig `json:"prebuiltVoiceConfig"`
}

// PrebuiltVoiceConfig names a built-in voice.
type PrebuiltVoiceConfig struct {
	// VoiceName is the voice identifier (for example "Kore").
	VoiceName string `json:"voiceName"`
}

// NewTextRequest builds the fixed request shape for text generation: one
// user turn carrying the prompt, plus an optional system instruction.
func NewTextRequest(prompt, systemInstruction string) *GenerateContentRequest {
	req := &GenerateContentRequest{
		Contents: []Content{
			{Role: "user", Parts: []Part{{Text: prompt}}},
		},
	}
	if systemInstruction != "" {
		req.SystemInstruction = &Content{Parts: []Part{{Text: systemInstruction}}}
	}
	return req
}

// NewSpeechRequest builds the fixed request shape for speech synthesis: one
// user turn carrying the text, audio response modality, and a prebuilt voice.
func NewSpeechRequest(text, voiceName string) *GenerateContentRequest {
	return &GenerateContentRequest{
		Contents: []Content{
			{Role: "user", Parts: []Part{{Text: text}}},
		},
		GenerationConfig: &GenerationConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig: &SpeechConfig{
				VoiceConfig: VoiceConfig{
					PrebuiltVoiceConfig: PrebuiltVoiceConfig{VoiceName: voiceName},
				},
			},
		},
	}
}

// GenerateContentResponse is the read-side view of a generateContent
// response. The gateway never reshapes upstream responses; this type exists
// only so the speech handler can check for inline audio data.
type GenerateContentResponse struct {
	// Candidates holds the generated candidates.
	Candidates []Candidate `json:"candidates"`
}

// Candidate is a single generated candidate.
type Candidate struct {
	// Content is the candidate's content.
	Content CandidateContent `json:"content"`
}

// CandidateContent is the content of a candidate.
type CandidateContent struct {
	// Parts are the content parts.
	Parts []CandidatePart `json:"parts"`
}

// CandidatePart is one part of a candidate's content.
type CandidatePart struct {
	// Text is present for text responses.
	Text string `json:"text,omitempty"`

	// InlineData is present for audio responses.
	InlineData *InlineData `json:"inlineData,omitempty"`
}

// InlineData carries base64-encoded binary content.
type InlineData struct {
	// MimeType describes the data (for example "audio/L16;codec=pcm;rate=24000").
	MimeType string `json:"mimeType"`

	// Data is the base64-encoded payload.
	Data string `json:"data"`
}

// InlineAudioData returns the inline audio payload at the fixed path
// candidates[0].content.parts[0].inlineData.data, and whether a non-empty
// payload is present.
func (r *GenerateContentResponse) InlineAudioData() (string, bool) {
	if len(r.Candidates) == 0 {
		return "", false
	}
	parts := r.Candidates[0].Content.Parts
	if len(parts) == 0 || parts[0].InlineData == nil {
		return "", false
	}
	data := parts[0].InlineData.Data
	return data, data != ""
}

// ModelList is the read-side view of a models listing, used by the
// reachability probe.
type ModelList struct {
	// Models are the listed models.
	Models []ModelInfo `json:"models"`
}

// ModelInfo identifies a single model.
type ModelInfo struct {
	// Name is the resource name (for example "models/gemini-2.0-flash").
	Name string `json:"name"`
}
