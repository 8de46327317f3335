package serializer

import (
	"github.com/ValentinKolb/dCount/rpc/common"
	"github.com/fxamacker/cbor/v2"
)

// NewCBORSerializer creates a new serializer using CBOR (RFC 8949) encoding.
// Fields are encoded with integer keys, which keeps messages compact.
func NewCBORSerializer() IRPCSerializer {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	dm, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		panic(err)
	}
	return &cborSerializerImpl{enc: em, dec: dm}
}

// cborSerializerImpl implements the IRPCSerializer interface using cbor encoding
type cborSerializerImpl struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (c cborSerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	return c.enc.Marshal(msg)
}

func (c cborSerializerImpl) Deserialize(b []byte, msg *common.Message) error {
	*msg = common.Message{}
	return c.dec.Unmarshal(b, msg)
}
