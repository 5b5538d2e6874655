package models

import (
	"bytes"

	"github.com/goccy/go-json"
)

// NotAvailable marks a field that was expected but missing. The presentation
// layer shows it as an explicit unknown value, unlike "" which it omits.
const NotAvailable = "N/A"

// Shape tells which field set an IdentityRecord carries.
type Shape string

const (
	ShapeRaw       Shape = "raw"
	ShapeAttribute Shape = "attribute"
	ShapeDelimited Shape = "delimited"
)

// IdentityRecord is the normalized result of interpreting one scanned payload.
// Only the fields belonging to Shape are ever set; RawData and ParseError are
// independent of the shape.
type IdentityRecord struct {
	Shape Shape

	ReferenceID string
	UID         string
	Name        string
	CareOf      string
	DateOfBirth string
	Gender      string

	Building     string
	Street       string
	Landmark     string
	Locality     string
	VTCName      string
	POName       string
	DistrictName string
	StateName    string
	Pincode      string

	Address        string
	AdditionalInfo string

	RawData    string
	ParseError string
}

// Field is one displayable entry of a record.
type Field struct {
	Key   string
	Label string
	Value string
}

// Fields lists the shape's fields in display order. Raw-shape records have none.
func (r IdentityRecord) Fields() []Field {
	switch r.Shape {
	case ShapeAttribute:
		return []Field{
			{"uid", "UID", r.UID},
			{"name", "Name", r.Name},
			{"careOf", "Care Of", r.CareOf},
			{"dateOfBirth", "DOB", r.DateOfBirth},
			{"gender", "Gender", r.Gender},
			{"building", "Building", r.Building},
			{"street", "Street", r.Street},
			{"landmark", "Landmark", r.Landmark},
			{"locality", "Locality", r.Locality},
			{"vtcName", "Village/Town/City", r.VTCName},
			{"poName", "Post Office", r.POName},
			{"districtName", "District", r.DistrictName},
			{"stateName", "State", r.StateName},
			{"pincode", "Pincode", r.Pincode},
		}
	case ShapeDelimited:
		fields := []Field{
			{"referenceId", "Reference ID", r.ReferenceID},
			{"name", "Name", r.Name},
			{"dateOfBirth", "DOB", r.DateOfBirth},
			{"gender", "Gender", r.Gender},
			{"address", "Address", r.Address},
		}
		if r.AdditionalInfo != "" {
			fields = append(fields, Field{"additionalInfo", "Additional Info", r.AdditionalInfo})
		}
		return fields
	}
	return nil
}

// Usable reports whether the record came out of a successful interpretation.
func (r IdentityRecord) Usable() bool {
	return r.ParseError == ""
}

// MarshalJSON writes the shape's keys in display order followed by rawData and,
// when set, parseError.
func (r IdentityRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	write := func(key, value string) error {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		k, err := json.Marshal(key)
		if err != nil {
			return err
		}
		v, err := json.MarshalWithOption(value, json.DisableHTMLEscape())
		if err != nil {
			return err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
		return nil
	}

	for _, f := range r.Fields() {
		if err := write(f.Key, f.Value); err != nil {
			return nil, err
		}
	}
	if err := write("rawData", r.RawData); err != nil {
		return nil, err
	}
	if r.ParseError != "" {
		if err := write("parseError", r.ParseError); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

var attributeKeys = []string{
	"uid", "careOf", "building", "street", "landmark", "locality",
	"vtcName", "poName", "districtName", "stateName", "pincode",
}

var delimitedKeys = []string{"referenceId", "address", "additionalInfo"}

// UnmarshalJSON restores a record written by MarshalJSON. The shape is inferred
// from the keys present.
func (r *IdentityRecord) UnmarshalJSON(data []byte) error {
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}

	out := IdentityRecord{Shape: ShapeRaw}
	for _, k := range attributeKeys {
		if _, ok := m[k]; ok {
			out.Shape = ShapeAttribute
			break
		}
	}
	if out.Shape == ShapeRaw {
		for _, k := range delimitedKeys {
			if _, ok := m[k]; ok {
				out.Shape = ShapeDelimited
				break
			}
		}
	}

	out.ReferenceID = m["referenceId"]
	out.UID = m["uid"]
	out.Name = m["name"]
	out.CareOf = m["careOf"]
	out.DateOfBirth = m["dateOfBirth"]
	out.Gender = m["gender"]
	out.Building = m["building"]
	out.Street = m["street"]
	out.Landmark = m["landmark"]
	out.Locality = m["locality"]
	out.VTCName = m["vtcName"]
	out.POName = m["poName"]
	out.DistrictName = m["districtName"]
	out.StateName = m["stateName"]
	out.Pincode = m["pincode"]
	out.Address = m["address"]
	out.AdditionalInfo = m["additionalInfo"]
	out.RawData = m["rawData"]
	out.ParseError = m["parseError"]

	*r = out
	return nil
}
