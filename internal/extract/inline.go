package extract

import (
	"fmt"
	"math"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// inlineImage is a BI ... ID ... EI image embedded in a content stream.
type inlineImage struct {
	dict pdfDict
	data []byte
}

var inlineKeys = map[string]string{
	"BPC": "BitsPerComponent",
	"CS":  "ColorSpace",
	"D":   "Decode",
	"DP":  "DecodeParms",
	"F":   "Filter",
	"H":   "Height",
	"IM":  "ImageMask",
	"I":   "Interpolate",
	"W":   "Width",
}

var inlineColorSpaces = map[string]string{
	"G":    "DeviceGray",
	"RGB":  "DeviceRGB",
	"CMYK": "DeviceCMYK",
	"I":    "Indexed",
}

var inlineFilters = map[string]string{
	"AHx": "ASCIIHexDecode",
	"A85": "ASCII85Decode",
	"LZW": "LZWDecode",
	"Fl":  "FlateDecode",
	"RL":  "RunLengthDecode",
	"CCF": "CCITTFaxDecode",
	"DCT": "DCTDecode",
}

func expandInline(abbrev map[string]string, name string) string {
	if full, ok := abbrev[name]; ok {
		return full
	}
	return name
}

// streamDict rewrites the inline image as the image XObject it abbreviates.
func (im *inlineImage) streamDict() (*types.StreamDict, error) {
	d := types.NewDict()
	d.InsertName("Type", "XObject")
	d.InsertName("Subtype", "Image")

	var filters []types.PDFFilter
	for k, v := range im.dict {
		key := expandInline(inlineKeys, k)
		switch key {
		case "Filter":
			names, err := inlineNames(v, inlineFilters)
			if err != nil {
				return nil, err
			}
			for _, n := range names {
				filters = append(filters, types.PDFFilter{Name: n})
			}
		case "ColorSpace":
			d[key] = inlineObject(v, inlineColorSpaces)
		case "DecodeParms":
		default:
			d[key] = inlineObject(v, nil)
		}
	}

	parms := inlineEntry(im.dict, "DP", "DecodeParms")
	switch p := parms.(type) {
	case pdfDict:
		if len(filters) > 0 {
			filters[0].DecodeParms = inlineObject(p, nil).(types.Dict)
		}
	case pdfArray:
		for i, e := range p {
			if dp, ok := e.(pdfDict); ok && i < len(filters) {
				filters[i].DecodeParms = inlineObject(dp, nil).(types.Dict)
			}
		}
	}
	if mask, _ := d["ImageMask"].(types.Boolean); mask {
		d.InsertName("ColorSpace", "DeviceGray")
		d["BitsPerComponent"] = types.Integer(1)
	}

	sd := types.NewStreamDict(d, 0, nil, nil, filters)
	sd.Raw = im.data
	if len(filters) == 0 {
		sd.FilterPipeline = nil
	}
	return &sd, nil
}

func inlineNames(v any, abbrev map[string]string) ([]string, error) {
	switch v := v.(type) {
	case pdfName:
		return []string{expandInline(abbrev, string(v))}, nil
	case pdfArray:
		out := make([]string, 0, len(v))
		for _, e := range v {
			n, ok := e.(pdfName)
			if !ok {
				return nil, fmt.Errorf("inline image: filter %v is not a name", e)
			}
			out = append(out, expandInline(abbrev, string(n)))
		}
		return out, nil
	}
	return nil, fmt.Errorf("inline image: bad filter %v", v)
}

// inlineObject converts a scanned operand to a pdfcpu object. Names are
// expanded through abbrev when it is set.
func inlineObject(v any, abbrev map[string]string) types.Object {
	switch v := v.(type) {
	case float64:
		if v == math.Trunc(v) {
			return types.Integer(int(v))
		}
		return types.Float(v)
	case bool:
		return types.Boolean(v)
	case pdfName:
		return types.Name(expandInline(abbrev, string(v)))
	case pdfString:
		return types.StringLiteral(v)
	case pdfArray:
		arr := make(types.Array, 0, len(v))
		for _, e := range v {
			arr = append(arr, inlineObject(e, abbrev))
		}
		return arr
	case pdfDict:
		d := types.NewDict()
		for k, e := range v {
			d[k] = inlineObject(e, nil)
		}
		return d
	}
	return nil
}
