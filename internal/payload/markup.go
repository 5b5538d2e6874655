package payload

import (
	"encoding/xml"
	"io"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/harrylevesque/idqr/internal/models"
)

const dataElement = "PrintLetterBarcodeData"

type attributes map[string]string

// lookup returns the first non-empty value among names.
func (a attributes) lookup(names ...string) string {
	for _, n := range names {
		if v := a[n]; v != "" {
			return v
		}
	}
	return ""
}

// extractMarkup reads the identity attributes out of an XML payload. A
// document without the data element yields a raw-only record.
func extractMarkup(raw string) (models.IdentityRecord, error) {
	attrs, found, err := findDataElement(raw)
	if err != nil {
		return models.IdentityRecord{}, err
	}
	if !found {
		return models.IdentityRecord{Shape: models.ShapeRaw, RawData: raw}, nil
	}

	return models.IdentityRecord{
		Shape:        models.ShapeAttribute,
		UID:          MaskUID(attrs.lookup("uid")),
		Name:         orDefault(attrs.lookup("name"), models.NotAvailable),
		CareOf:       attrs.lookup("careOf", "co"),
		DateOfBirth:  attrs.lookup("dob", "yob"),
		Gender:       attrs.lookup("gender"),
		Building:     attrs.lookup("building", "house"),
		Street:       attrs.lookup("street"),
		Landmark:     attrs.lookup("landmark", "lm"),
		Locality:     attrs.lookup("locality", "loc"),
		VTCName:      attrs.lookup("vtcName", "vtc"),
		POName:       attrs.lookup("poName", "po"),
		DistrictName: attrs.lookup("districtName", "dist"),
		StateName:    attrs.lookup("stateName", "state"),
		Pincode:      attrs.lookup("pincode", "pc"),
		RawData:      raw,
	}, nil
}

// findDataElement walks the whole document so that syntax errors after the
// data element still count as faults. The first matching element wins.
func findDataElement(raw string) (attributes, bool, error) {
	dec := xml.NewDecoder(strings.NewReader(raw))
	dec.CharsetReader = charset.NewReaderLabel

	var (
		attrs attributes
		found bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return attrs, found, nil
		}
		if err != nil {
			return nil, false, &Error{Kind: KindMarkup, Message: "malformed markup", Cause: err}
		}

		se, ok := tok.(xml.StartElement)
		if !ok || found || se.Name.Local != dataElement {
			continue
		}
		found = true
		attrs = make(attributes, len(se.Attr))
		for _, a := range se.Attr {
			if _, dup := attrs[a.Name.Local]; !dup {
				attrs[a.Name.Local] = a.Value
			}
		}
	}
}
