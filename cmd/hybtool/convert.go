package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/arloliu/hybractal/floatcodec"
	"github.com/arloliu/hybractal/format"
	"github.com/arloliu/hybractal/internal/hexutil"
	"github.com/arloliu/hybractal/window"
)

func runConvert(_ context.Context, e *env, args []string) error {
	fs, logLevel := newFlagSet(e, "convert")
	outFormat := fs.StringP("format", "f", "hex", "output format: hex or float")
	precision := fs.IntP("precision", "p", 2, "output precision for hex: 1, 2, 4 or 8")
	if err := parseFlags(e, fs, logLevel, args); err != nil {
		return helpOK(err)
	}
	if fs.NArg() != 1 {
		return errors.New("convert: expected exactly one center hex")
	}

	out, err := convertCenterHex(fs.Arg(0), format.Precision(*precision), *outFormat)
	if err != nil {
		return err
	}
	fmt.Fprintln(e.stdout, out)

	return nil
}

// convertCenterHex re-encodes a center hex of any precision. The "float"
// format prints the center as "+re+im i" instead.
func convertCenterHex(hex string, p format.Precision, outFormat string) (string, error) {
	re, im, err := window.HexToScalars(hex)
	if err != nil {
		return "", fmt.Errorf("invalid input: %w", err)
	}

	switch strings.ToLower(outFormat) {
	case "hex":
		if !p.IsValid() {
			return "", fmt.Errorf("convert: precision must be 1, 2, 4 or 8, got %d", uint8(p))
		}

		codec := floatcodec.DefaultCodec()
		b := codec.Append(nil, floatcodec.Convert(re, p))
		b = codec.Append(b, floatcodec.Convert(im, p))

		return hexutil.Encode(b), nil
	case "float":
		return fmt.Sprintf("%+g%+g i", re.Float64(), im.Float64()), nil
	default:
		return "", fmt.Errorf("convert: unknown format %q, want hex or float", outFormat)
	}
}
