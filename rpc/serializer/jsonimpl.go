package serializer

import (
	"bytes"
	"encoding/json"
	"github.com/ValentinKolb/dCount/rpc/common"
)

// NewJSONSerializer creates a serializer that writes counter messages as json objects.
// It is the format used by the http transport and the easiest to inspect on the wire.
func NewJSONSerializer() IRPCSerializer {
	return &jsonSerializerImpl{}
}

type jsonSerializerImpl struct{}

func (j jsonSerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	return json.Marshal(msg)
}

// Deserialize rejects unknown fields, a node speaking another protocol fails loudly
func (j jsonSerializerImpl) Deserialize(b []byte, msg *common.Message) error {
	*msg = common.Message{}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	return dec.Decode(msg)
}
