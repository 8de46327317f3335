package base

import (
	"encoding/binary"
	"fmt"
	"github.com/ValentinKolb/dCount/rpc/common"
	"io"
	"net"
)

// frameHeaderSize is shardID (8 bytes) + requestID (8 bytes) + payload length (4 bytes)
const frameHeaderSize = 20

// ErrFrameTooLarge is returned when a peer announces a payload above common.MaxFrameSize
var ErrFrameTooLarge = fmt.Errorf("frame exceeds maximum size of %d bytes", common.MaxFrameSize)

// writeFrame sends one counter message as
// [shardID uint64][requestID uint64][length uint32][payload], all big endian
func writeFrame(conn net.Conn, shardID uint64, requestID uint64, data []byte) error {
	if len(data) > common.MaxFrameSize {
		return fmt.Errorf("%w: got %d", ErrFrameTooLarge, len(data))
	}

	header := make([]byte, frameHeaderSize)
	binary.BigEndian.PutUint64(header[:8], shardID)
	binary.BigEndian.PutUint64(header[8:16], requestID)
	binary.BigEndian.PutUint32(header[16:20], uint32(len(data)))

	b := net.Buffers{header, data}
	_, err := b.WriteTo(conn)
	return err
}

// readFrame reads one frame, reusing buf for the payload when it is large enough.
// The announced length is checked against common.MaxFrameSize before anything is allocated.
func readFrame(conn net.Conn, buf []byte) (uint64, uint64, []byte, error) {
	var header [frameHeaderSize]byte
	if _, err := io.ReadFull(conn, header[:]); err != nil {
		return 0, 0, nil, err
	}

	shardID := binary.BigEndian.Uint64(header[:8])
	requestID := binary.BigEndian.Uint64(header[8:16])
	length := binary.BigEndian.Uint32(header[16:20])

	if length == 0 {
		return shardID, requestID, []byte{}, nil
	}
	if uint64(length) > common.MaxFrameSize {
		return 0, 0, nil, fmt.Errorf("%w: peer announced %d", ErrFrameTooLarge, length)
	}

	if len(buf) < int(length) {
		buf = make([]byte, length)
	}
	if _, err := io.ReadFull(conn, buf[:length]); err != nil {
		return 0, 0, nil, err
	}
	return shardID, requestID, buf[:length], nil
}
