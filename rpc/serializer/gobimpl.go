package serializer

import (
	"bytes"
	"encoding/gob"
	"github.com/ValentinKolb/dCount/rpc/common"
)

// NewGOBSerializer creates a serializer using Go's gob format.
// Every frame carries its own type description, so it is the largest of the encodings.
func NewGOBSerializer() IRPCSerializer {
	return &gobSerializerImpl{}
}

type gobSerializerImpl struct{}

func (g gobSerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(msg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Deserialize resets msg first since gob leaves zero valued fields untouched
func (g gobSerializerImpl) Deserialize(b []byte, msg *common.Message) error {
	*msg = common.Message{}
	return gob.NewDecoder(bytes.NewReader(b)).Decode(msg)
}
