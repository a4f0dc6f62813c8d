package metadata

import (
	"fmt"

	"github.com/arloliu/hybractal/errs"
	"github.com/arloliu/hybractal/format"
	"github.com/fxamacker/cbor/v2"
)

// record is the generation 1 layout: a CBOR map with integer keys.
type record struct {
	Generation    uint8   `cbor:"1,keyasint"`
	SequenceBin   uint64  `cbor:"2,keyasint"`
	SequenceLen   uint8   `cbor:"3,keyasint"`
	Rows          uint64  `cbor:"4,keyasint"`
	Cols          uint64  `cbor:"5,keyasint"`
	MaxIterations uint16  `cbor:"6,keyasint"`
	Precision     uint8   `cbor:"7,keyasint"`
	CenterHex     string  `cbor:"8,keyasint"`
	XSpan         float64 `cbor:"9,keyasint"`
	YSpan         float64 `cbor:"10,keyasint"`
}

// encMode uses Core Deterministic Encoding, so a record always produces
// the same bytes.
var encMode cbor.EncMode

// decMode ignores unknown keys and rejects duplicate ones.
var decMode cbor.DecMode

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("metadata: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		DupMapKey: cbor.DupMapKeyEnforcedAPF,
	}.DecMode()
	if err != nil {
		panic("metadata: CBOR decoder initialization failed: " + err.Error())
	}
}

func marshalRecord(r record) ([]byte, error) {
	return encMode.Marshal(r)
}

func unmarshalRecord(data []byte) (record, error) {
	var r record
	if err := decMode.Unmarshal(data, &r); err != nil {
		return record{}, err
	}
	if format.Generation(r.Generation) != format.Gen1 {
		return record{}, fmt.Errorf("%w: record generation %d", errs.ErrFormatParseFailed, r.Generation)
	}

	return r, nil
}

// Diagnose returns the CBOR diagnostic notation of a generation 1 record.
func Diagnose(data []byte) (string, error) {
	return cbor.Diagnose(data)
}
