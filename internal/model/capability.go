package model

// Capability is a coarse-grained label attached to a model record and
// optionally required by an operation to ensure semantic compatibility at
// load time. The vocabulary is fixed; unrecognized values fail validation.
type Capability string

const (
	CapabilityTextToText      Capability = "text_to_text"
	CapabilityTextToImage     Capability = "text_to_image"
	CapabilityImageToText     Capability = "image_to_text"
	CapabilityTextImageToText Capability = "text_image_to_text"
	CapabilityImageEdit       Capability = "image_edit"
	CapabilityTextToAudio     Capability = "text_to_audio"
	CapabilityAudioToText     Capability = "audio_to_text"
	CapabilityTextToEmbedding Capability = "text_to_embedding"
)

var validCapabilities = map[Capability]struct{}{
	CapabilityTextToText:      {},
	CapabilityTextToImage:     {},
	CapabilityImageToText:     {},
	CapabilityTextImageToText: {},
	CapabilityImageEdit:       {},
	CapabilityTextToAudio:     {},
	CapabilityAudioToText:     {},
	CapabilityTextToEmbedding: {},
}

// Valid reports whether c is part of the fixed capability vocabulary.
func (c Capability) Valid() bool {
	_, ok := validCapabilities[c]
	return ok
}
