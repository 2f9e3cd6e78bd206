package mcp

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
)

// Default bounds for draining a streamed ContentBlock at serialization
// time, defaulting to 50 MiB total with 64 KiB chunks.
const (
	DefaultMaxStreamBytes = 50 * 1024 * 1024
	DefaultStreamChunk    = 64 * 1024
)

// ErrStreamConsumed is returned when a TextData/BlobData stream handle is
// drained a second time. A stream handle is consumed at most once.
var ErrStreamConsumed = errors.New("mcp: content stream already consumed")

// ErrStreamTooLarge is returned when a streamed content block exceeds its
// MaxBytes during serialization. The caller must treat the transport
// stream as unrecoverable past this point.
var ErrStreamTooLarge = errors.New("mcp: content stream exceeds max size")

// TextData is either owned inline text or a lazily-drained stream of text.
// Exactly one of the two representations is valid at a time.
type TextData struct {
	inline   string
	isInline bool
	stream   io.Reader
	consumed *bool
	mu       *sync.Mutex
}

// NewInlineText builds an inline TextData.
func NewInlineText(s string) TextData { return TextData{inline: s, isInline: true} }

// NewStreamText wraps a reader as a lazily-drained TextData. The reader is
// consumed at most once; a second call to Drain returns ErrStreamConsumed.
func NewStreamText(r io.Reader) TextData {
	consumed := false
	return TextData{stream: r, consumed: &consumed, mu: &sync.Mutex{}}
}

// Drain returns the text content, reading at most maxBytes from a stream
// representation (ErrStreamTooLarge if exceeded). Inline data is returned
// as-is regardless of maxBytes.
func (t TextData) Drain(maxBytes int64) (string, error) {
	if t.isInline {
		return t.inline, nil
	}
	if t.stream == nil {
		return "", nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if *t.consumed {
		return "", ErrStreamConsumed
	}
	*t.consumed = true
	limited := io.LimitReader(t.stream, maxBytes+1)
	b, err := io.ReadAll(limited)
	if err != nil {
		return "", fmt.Errorf("mcp: draining text stream: %w", err)
	}
	if int64(len(b)) > maxBytes {
		return "", ErrStreamTooLarge
	}
	return string(b), nil
}

// BlobData is either owned inline bytes or a lazily-drained byte stream,
// base64-encoded on the wire.
type BlobData struct {
	inline   []byte
	isInline bool
	stream   io.Reader
	consumed *bool
	mu       *sync.Mutex
}

// NewInlineBlob builds an inline BlobData.
func NewInlineBlob(b []byte) BlobData { return BlobData{inline: b, isInline: true} }

// NewStreamBlob wraps a reader as a lazily-drained BlobData.
func NewStreamBlob(r io.Reader) BlobData {
	consumed := false
	return BlobData{stream: r, consumed: &consumed, mu: &sync.Mutex{}}
}

// Drain returns the base64-encoded blob content, reading a stream
// representation in chunkSize steps up to maxBytes of raw bytes.
func (b BlobData) Drain(maxBytes int64, chunkSize int) (string, error) {
	if b.isInline {
		return base64.StdEncoding.EncodeToString(b.inline), nil
	}
	if b.stream == nil {
		return "", nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if *b.consumed {
		return "", ErrStreamConsumed
	}
	*b.consumed = true
	if chunkSize <= 0 {
		chunkSize = DefaultStreamChunk
	}
	var out []byte
	buf := make([]byte, chunkSize)
	var total int64
	for {
		n, err := b.stream.Read(buf)
		if n > 0 {
			total += int64(n)
			if total > maxBytes {
				return "", ErrStreamTooLarge
			}
			out = append(out, buf[:n]...)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("mcp: draining blob stream: %w", err)
		}
	}
	return base64.StdEncoding.EncodeToString(out), nil
}

// Annotations carries MCP's optional audience/priority hints, shared by
// several ContentBlock variants.
type Annotations struct {
	Audience []string `json:"audience,omitempty"`
	Priority *float64 `json:"priority,omitempty"`
}

// ResourceContents is the Text|Blob variant embedded in EmbeddedResource.
type ResourceContents struct {
	URI      string
	MimeType string
	Text     *TextData
	Blob     *BlobData
}

// ContentBlock is the closed Text|Image|Audio|ResourceLink|EmbeddedResource
// variant. Exactly one Kind-matching field is populated.
type ContentBlock struct {
	Kind ContentKind

	// Text
	Text        TextData
	Annotations *Annotations

	// Image / Audio
	Blob     BlobData
	MimeType string

	// ResourceLink
	URI         string
	Name        string
	Description string

	// EmbeddedResource
	Resource ResourceContents
}

// NewTextBlock builds an inline text ContentBlock, the common case for a
// tool's CallToolResult content.
func NewTextBlock(s string) ContentBlock {
	return ContentBlock{Kind: ContentText, Text: NewInlineText(s)}
}

// ContentKind tags the ContentBlock variant.
type ContentKind string

const (
	ContentText             ContentKind = "text"
	ContentImage            ContentKind = "image"
	ContentAudio            ContentKind = "audio"
	ContentResourceLink     ContentKind = "resource_link"
	ContentEmbeddedResource ContentKind = "resource"
)

// StreamLimits bounds how much of a streamed content block is drained
// during serialization.
type StreamLimits struct {
	MaxBytes  int64
	ChunkSize int
}

// DefaultStreamLimits returns the default 50 MiB / 64 KiB bounds.
func DefaultStreamLimits() StreamLimits {
	return StreamLimits{MaxBytes: DefaultMaxStreamBytes, ChunkSize: DefaultStreamChunk}
}

// wireContentBlock is the on-wire MCP shape for a single content item.
type wireContentBlock struct {
	Type        string       `json:"type"`
	Text        string       `json:"text,omitempty"`
	Data        string       `json:"data,omitempty"`
	MimeType    string       `json:"mimeType,omitempty"`
	URI         string       `json:"uri,omitempty"`
	Name        string       `json:"name,omitempty"`
	Description string       `json:"description,omitempty"`
	Annotations *Annotations `json:"annotations,omitempty"`
	Resource    *wireResource `json:"resource,omitempty"`
}

type wireResource struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType,omitempty"`
	Text     string `json:"text,omitempty"`
	Blob     string `json:"blob,omitempty"`
}

// Serialize drains any streamed data (subject to limits) and renders the
// block's fixed wire shape. It is the only supported path for encoding a
// ContentBlock: a generic json.Marshal would silently skip the
// draining/bounds-checking step this method performs.
func (c ContentBlock) Serialize(limits StreamLimits) (json.RawMessage, error) {
	w := wireContentBlock{Annotations: c.Annotations}
	switch c.Kind {
	case ContentText:
		w.Type = "text"
		text, err := c.Text.Drain(limits.MaxBytes)
		if err != nil {
			return nil, err
		}
		w.Text = text
	case ContentImage, ContentAudio:
		if c.Kind == ContentImage {
			w.Type = "image"
		} else {
			w.Type = "audio"
		}
		data, err := c.Blob.Drain(limits.MaxBytes, limits.ChunkSize)
		if err != nil {
			return nil, err
		}
		w.Data = data
		w.MimeType = c.MimeType
	case ContentResourceLink:
		w.Type = "resource_link"
		w.URI = c.URI
		w.Name = c.Name
		w.Description = c.Description
		w.MimeType = c.MimeType
	case ContentEmbeddedResource:
		w.Type = "resource"
		res := &wireResource{URI: c.Resource.URI, MimeType: c.Resource.MimeType}
		if c.Resource.Text != nil {
			text, err := c.Resource.Text.Drain(limits.MaxBytes)
			if err != nil {
				return nil, err
			}
			res.Text = text
		}
		if c.Resource.Blob != nil {
			blob, err := c.Resource.Blob.Drain(limits.MaxBytes, limits.ChunkSize)
			if err != nil {
				return nil, err
			}
			res.Blob = blob
		}
		w.Resource = res
	default:
		return nil, fmt.Errorf("mcp: unknown content block kind %q", c.Kind)
	}
	return json.Marshal(w)
}

// ParseContentBlock decodes a wire content item into its inline-only
// ContentBlock representation (parsing never yields a stream variant;
// streams are a serialization-side producer concept only).
func ParseContentBlock(data json.RawMessage) (ContentBlock, error) {
	var w wireContentBlock
	if err := json.Unmarshal(data, &w); err != nil {
		return ContentBlock{}, fmt.Errorf("mcp: invalid content block: %w", err)
	}
	switch w.Type {
	case "text":
		return ContentBlock{Kind: ContentText, Text: NewInlineText(w.Text), Annotations: w.Annotations}, nil
	case "image":
		raw, err := base64.StdEncoding.DecodeString(w.Data)
		if err != nil {
			return ContentBlock{}, fmt.Errorf("mcp: invalid image data: %w", err)
		}
		return ContentBlock{Kind: ContentImage, Blob: NewInlineBlob(raw), MimeType: w.MimeType, Annotations: w.Annotations}, nil
	case "audio":
		raw, err := base64.StdEncoding.DecodeString(w.Data)
		if err != nil {
			return ContentBlock{}, fmt.Errorf("mcp: invalid audio data: %w", err)
		}
		return ContentBlock{Kind: ContentAudio, Blob: NewInlineBlob(raw), MimeType: w.MimeType, Annotations: w.Annotations}, nil
	case "resource_link":
		return ContentBlock{Kind: ContentResourceLink, URI: w.URI, Name: w.Name, Description: w.Description, MimeType: w.MimeType}, nil
	case "resource":
		if w.Resource == nil {
			return ContentBlock{}, errors.New("mcp: resource content block missing resource field")
		}
		rc := ResourceContents{URI: w.Resource.URI, MimeType: w.Resource.MimeType}
		if w.Resource.Blob != "" {
			raw, err := base64.StdEncoding.DecodeString(w.Resource.Blob)
			if err != nil {
				return ContentBlock{}, fmt.Errorf("mcp: invalid embedded resource blob: %w", err)
			}
			b := NewInlineBlob(raw)
			rc.Blob = &b
		} else {
			t := NewInlineText(w.Resource.Text)
			rc.Text = &t
		}
		return ContentBlock{Kind: ContentEmbeddedResource, Resource: rc}, nil
	default:
		return ContentBlock{}, fmt.Errorf("mcp: unknown content block type %q", w.Type)
	}
}
