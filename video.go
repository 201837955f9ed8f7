package tello

import "bytes"

const (
	// VideoWidth and VideoHeight are the dimensions of the drone's encoded
	// video stream.
	VideoWidth  = 960
	VideoHeight = 720
)

// VideoFrame is the payload of one encoded picture, reassembled from UDP
// chunks. The bytes are owned by the receiver once delivered.
type VideoFrame struct {
	Data []byte
}

// chunkAssembler accumulates video chunks into frames. The drone splits a
// frame into maximum-size datagrams and marks the end of the frame with one
// undersized datagram; chunks are assumed to arrive in order.
type chunkAssembler struct {
	maxChunkSize int
	buf          bytes.Buffer
}

func newChunkAssembler(maxChunkSize int) *chunkAssembler {
	return &chunkAssembler{maxChunkSize: maxChunkSize}
}

// Add appends one received chunk. When the chunk completes a frame, the
// frame is returned and the accumulator resets; otherwise ok is false. A
// zero-length datagram contributes nothing and never completes a frame.
func (a *chunkAssembler) Add(chunk []byte) (frame VideoFrame, ok bool) {
	if len(chunk) == 0 {
		return VideoFrame{}, false
	}

	a.buf.Write(chunk)
	if len(chunk) < a.maxChunkSize {
		frame = VideoFrame{Data: append([]byte(nil), a.buf.Bytes()...)}
		a.buf.Reset()
		return frame, true
	}
	return VideoFrame{}, false
}
