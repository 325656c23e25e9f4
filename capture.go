package strix

// CaptureKind tags the payload variant of a Capture.
type CaptureKind int

const (
	CaptureNone CaptureKind = iota
	CaptureImage
	CaptureAudio
)

func (k CaptureKind) String() string {
	switch k {
	case CaptureImage:
		return "image"
	case CaptureAudio:
		return "audio"
	default:
		return "none"
	}
}

// Capture is the original captured payload of a run, available verbatim to the
// first blocks that need raw bytes (an image block, media auto-copy), carried
// independently of the text value flowing through the graph.
//
// A capture is created once per run and shared by reference across every
// branch; it is never mutated after the run starts.
type Capture struct {
	Kind CaptureKind
	Data []byte
}

// NoCapture is the zero capture: plain text input with no media payload.
var NoCapture = Capture{Kind: CaptureNone}

func NewImageCapture(data []byte) Capture { return Capture{Kind: CaptureImage, Data: data} }

func NewAudioCapture(data []byte) Capture { return Capture{Kind: CaptureAudio, Data: data} }

// IsImage reports whether the capture carries image bytes.
func (c Capture) IsImage() bool { return c.Kind == CaptureImage && len(c.Data) > 0 }
