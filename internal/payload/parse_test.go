package payload

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrylevesque/idqr/internal/models"
)

const sampleMarkup = `<?xml version="1.0"?><PrintLetterBarcodeData uid="123456789012" name="Jane Doe" gender="F" co="John Doe" pc="560001"/>`

func TestDetect(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{`<?xml version="1.0"?><a/>`, FormatMarkup},
		{`<?xml`, FormatMarkup},
		{` <?xml version="1.0"?>`, FormatDelimited},
		{`<?XML version="1.0"?>`, FormatDelimited},
		{`REF|Jane`, FormatDelimited},
		{``, FormatDelimited},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Detect(tt.in), "input %q", tt.in)
	}
	assert.Equal(t, "markup", FormatMarkup.String())
	assert.Equal(t, "delimited", FormatDelimited.String())
}

func TestParse_Markup(t *testing.T) {
	t.Run("reference document", func(t *testing.T) {
		rec := Parse(sampleMarkup)

		assert.Equal(t, models.ShapeAttribute, rec.Shape)
		assert.Equal(t, "XXXX XXXX 9012", rec.UID)
		assert.Equal(t, "Jane Doe", rec.Name)
		assert.Equal(t, "F", rec.Gender)
		assert.Equal(t, "John Doe", rec.CareOf)
		assert.Equal(t, "560001", rec.Pincode)
		assert.Equal(t, "", rec.Building)
		assert.Equal(t, "", rec.Street)
		assert.Equal(t, sampleMarkup, rec.RawData)
		assert.Empty(t, rec.ParseError)
		assert.Empty(t, rec.ReferenceID)
		assert.Empty(t, rec.Address)
	})

	t.Run("primary attribute names win over aliases", func(t *testing.T) {
		doc := `<?xml version="1.0" encoding="UTF-8"?>
<PrintLetterBarcodeData uid="999988887777" name="A B" careOf="Primary" co="Alias"
  building="12" house="34" landmark="Temple" lm="Park" locality="Old Town" loc="New Town"
  vtcName="Mysuru" vtc="Mysore" poName="Main PO" po="Side PO" districtName="Mysuru" dist="MYS"
  stateName="Karnataka" state="KA" pincode="570001" pc="570002" dob="01/02/1990" yob="1990"
  street="MG Road" gender="M"/>`
		rec := Parse(doc)

		assert.Equal(t, "Primary", rec.CareOf)
		assert.Equal(t, "12", rec.Building)
		assert.Equal(t, "Temple", rec.Landmark)
		assert.Equal(t, "Old Town", rec.Locality)
		assert.Equal(t, "Mysuru", rec.VTCName)
		assert.Equal(t, "Main PO", rec.POName)
		assert.Equal(t, "Mysuru", rec.DistrictName)
		assert.Equal(t, "Karnataka", rec.StateName)
		assert.Equal(t, "570001", rec.Pincode)
		assert.Equal(t, "01/02/1990", rec.DateOfBirth)
		assert.Equal(t, "MG Road", rec.Street)
		assert.Equal(t, "M", rec.Gender)
	})

	t.Run("aliases fill in for missing or empty primaries", func(t *testing.T) {
		doc := `<?xml version="1.0"?><PrintLetterBarcodeData careOf="" co="S/O Ram" house="7" lm="Lake" loc="Ward 3" vtc="Hosur" po="Hosur" dist="Krishnagiri" state="Tamil Nadu" pc="635109" yob="1985"/>`
		rec := Parse(doc)

		assert.Equal(t, "S/O Ram", rec.CareOf)
		assert.Equal(t, "7", rec.Building)
		assert.Equal(t, "Lake", rec.Landmark)
		assert.Equal(t, "Ward 3", rec.Locality)
		assert.Equal(t, "Hosur", rec.VTCName)
		assert.Equal(t, "Hosur", rec.POName)
		assert.Equal(t, "Krishnagiri", rec.DistrictName)
		assert.Equal(t, "Tamil Nadu", rec.StateName)
		assert.Equal(t, "635109", rec.Pincode)
		assert.Equal(t, "1985", rec.DateOfBirth)
	})

	t.Run("missing name and uid use the sentinel, others stay empty", func(t *testing.T) {
		rec := Parse(`<?xml version="1.0"?><PrintLetterBarcodeData gender="F"/>`)

		assert.Equal(t, models.ShapeAttribute, rec.Shape)
		assert.Equal(t, models.NotAvailable, rec.Name)
		assert.Equal(t, models.NotAvailable, rec.UID)
		for _, f := range rec.Fields() {
			if f.Key == "name" || f.Key == "uid" || f.Key == "gender" {
				continue
			}
			assert.Equal(t, "", f.Value, "field %s", f.Key)
		}
	})

	t.Run("nested data element is found", func(t *testing.T) {
		rec := Parse(`<?xml version="1.0"?><QDA><PrintLetterBarcodeData name="Nested"/></QDA>`)
		assert.Equal(t, models.ShapeAttribute, rec.Shape)
		assert.Equal(t, "Nested", rec.Name)
	})

	t.Run("first data element wins", func(t *testing.T) {
		rec := Parse(`<?xml version="1.0"?><r><PrintLetterBarcodeData name="One"/><PrintLetterBarcodeData name="Two"/></r>`)
		assert.Equal(t, "One", rec.Name)
	})

	t.Run("entities are decoded", func(t *testing.T) {
		rec := Parse(`<?xml version="1.0"?><PrintLetterBarcodeData name="A &amp; B" co="D&apos;Souza"/>`)
		assert.Equal(t, "A & B", rec.Name)
		assert.Equal(t, "D'Souza", rec.CareOf)
	})

	t.Run("declared latin-1 charset is transcoded", func(t *testing.T) {
		doc := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?><PrintLetterBarcodeData name=\"Jos\xe9\"/>"
		rec := Parse(doc)
		require.Empty(t, rec.ParseError)
		assert.Equal(t, "José", rec.Name)
	})
}

func TestParse_MarkupWithoutDataElement(t *testing.T) {
	inputs := []string{
		`<?xml version="1.0"?><SomethingElse uid="123456789012" name="Jane"/>`,
		`<?xml version="1.0"?>`,
		`<?xml version="1.0"?><root><child/></root>`,
	}
	for _, in := range inputs {
		rec := Parse(in)
		assert.Equal(t, models.IdentityRecord{Shape: models.ShapeRaw, RawData: in}, rec, "input %q", in)
	}
}

func TestParse_MarkupFaults(t *testing.T) {
	inputs := []string{
		`<?xml`,
		`<?xml version="1.0"?><PrintLetterBarcodeData name="Jane"`,
		`<?xml version="1.0"?><PrintLetterBarcodeData name="Jane"><open>`,
		`<?xml version="1.0"?><a></b>`,
		`<?xml version="1.0"?><PrintLetterBarcodeData name="Jane"/><broken attr=>`,
		"<?xml version=\"1.0\"?><PrintLetterBarcodeData name=\"\xff\xfe\"/>",
		`<?xml version="2.0"?><PrintLetterBarcodeData/>`,
	}
	for _, in := range inputs {
		rec, err := Interpret(in)
		require.Error(t, err, "input %q", in)
		assert.True(t, IsKind(err, KindMarkup), "input %q", in)

		assert.Equal(t, models.ShapeRaw, rec.Shape)
		assert.Equal(t, in, rec.RawData)
		assert.Equal(t, err.Error(), rec.ParseError)
		assert.Empty(t, rec.Fields())
		assert.Empty(t, rec.Name)
		assert.Empty(t, rec.UID)

		assert.Equal(t, rec, Parse(in))
	}
}

func TestParse_Delimited(t *testing.T) {
	t.Run("full pipe record", func(t *testing.T) {
		in := "REF123|Jane Doe|1990-01-01|F|123 Main St"
		rec := Parse(in)

		assert.Equal(t, models.IdentityRecord{
			Shape:       models.ShapeDelimited,
			ReferenceID: "REF123",
			Name:        "Jane Doe",
			DateOfBirth: "1990-01-01",
			Gender:      "F",
			Address:     "123 Main St",
			RawData:     in,
		}, rec)
	})

	t.Run("single field", func(t *testing.T) {
		rec := Parse("REF123")

		assert.Equal(t, models.IdentityRecord{
			Shape:       models.ShapeDelimited,
			ReferenceID: "REF123",
			Name:        models.NotAvailable,
			DateOfBirth: models.NotAvailable,
			Gender:      models.NotAvailable,
			Address:     models.NotAvailable,
			RawData:     "REF123",
		}, rec)
	})

	t.Run("empty fields use the sentinel", func(t *testing.T) {
		rec := Parse("REF||1990-01-01||")
		assert.Equal(t, "REF", rec.ReferenceID)
		assert.Equal(t, models.NotAvailable, rec.Name)
		assert.Equal(t, "1990-01-01", rec.DateOfBirth)
		assert.Equal(t, models.NotAvailable, rec.Gender)
		assert.Equal(t, models.NotAvailable, rec.Address)
	})

	t.Run("empty payload", func(t *testing.T) {
		rec := Parse("")
		assert.Equal(t, models.ShapeDelimited, rec.Shape)
		assert.Equal(t, models.NotAvailable, rec.ReferenceID)
		assert.Equal(t, "", rec.RawData)
	})

	t.Run("comma and newline", func(t *testing.T) {
		rec := Parse("R1,Asha,2001-02-03,F,Pune")
		assert.Equal(t, "Asha", rec.Name)
		assert.Equal(t, "Pune", rec.Address)

		rec = Parse("R2\nRavi\n1999-12-31\nM\nDelhi")
		assert.Equal(t, "Ravi", rec.Name)
		assert.Equal(t, "Delhi", rec.Address)
	})

	t.Run("extra fields are dropped by default", func(t *testing.T) {
		rec := Parse("A|B|C|D|E|F|G")
		assert.Equal(t, "E", rec.Address)
		assert.Empty(t, rec.AdditionalInfo)
	})
}

func TestSelectDelimiter_Priority(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"a|b", "|"},
		// a single pipe beats many commas
		{"a,b,c,d,e|f", "|"},
		{"a,b\nc\nd\ne", ","},
		{"a\nb", "\n"},
		{"plain", "\n"},
		{"", "\n"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, selectDelimiter(tt.in), "input %q", tt.in)
	}

	rec := Parse("Jane, Doe|1990|F")
	assert.Equal(t, "Jane, Doe", rec.ReferenceID)
	assert.Equal(t, "1990", rec.Name)
}

func TestParser_WithExtraFields(t *testing.T) {
	p := NewParser(WithExtraFields(true))

	rec := p.Parse("A|B|C|D|E|F|G")
	assert.Equal(t, "E", rec.Address)
	assert.Equal(t, "F|G", rec.AdditionalInfo)

	rec = p.Parse("A,B,C,D,E,x")
	assert.Equal(t, "x", rec.AdditionalInfo)

	rec = p.Parse("A|B|C|D|E||")
	assert.Empty(t, rec.AdditionalInfo)

	rec = p.Parse("A|B")
	assert.Empty(t, rec.AdditionalInfo)

	// markup is unaffected
	assert.Equal(t, Parse(sampleMarkup), p.Parse(sampleMarkup))
}

func TestMaskUID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", models.NotAvailable},
		{"1", "XXXX XXXX XXXX"},
		{"123", "XXXX XXXX XXXX"},
		{"1234", "XXXX XXXX 1234"},
		{"123456789012", "XXXX XXXX 9012"},
		{"ab१२३४", "XXXX XXXX १२३४"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MaskUID(tt.in), "input %q", tt.in)
	}
}

func TestParse_ShortUIDIsFullyMasked(t *testing.T) {
	rec := Parse(`<?xml version="1.0"?><PrintLetterBarcodeData uid="987"/>`)
	assert.Equal(t, "XXXX XXXX XXXX", rec.UID)
	assert.NotContains(t, rec.UID, "987")
}

func TestParse_GeneratedMarkup(t *testing.T) {
	for i := 0; i < 200; i++ {
		uid := gofakeit.Numerify("############")
		name := gofakeit.Name()
		street := gofakeit.Street()
		city := gofakeit.City()
		zip := gofakeit.Zip()

		doc := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?><PrintLetterBarcodeData uid=%s name=%s street=%s vtc=%s pc=%s/>`,
			quoteAttr(t, uid), quoteAttr(t, name), quoteAttr(t, street), quoteAttr(t, city), quoteAttr(t, zip))

		rec := Parse(doc)
		require.Empty(t, rec.ParseError, doc)
		assert.Equal(t, "XXXX XXXX "+uid[len(uid)-4:], rec.UID)
		assert.Equal(t, name, rec.Name)
		assert.Equal(t, street, rec.Street)
		assert.Equal(t, city, rec.VTCName)
		assert.Equal(t, zip, rec.Pincode)
		assert.Equal(t, doc, rec.RawData)

		for _, f := range rec.Fields() {
			assert.NotEqual(t, uid, f.Value, "raw uid leaked into %s", f.Key)
		}
	}
}

func TestParse_GeneratedDelimited(t *testing.T) {
	clean := strings.NewReplacer("|", "", ",", "", "\n", "")
	for _, delim := range []string{"|", ",", "\n"} {
		for i := 0; i < 50; i++ {
			fields := []string{
				clean.Replace(gofakeit.UUID()),
				clean.Replace(gofakeit.Name()),
				gofakeit.Date().Format("2006-01-02"),
				clean.Replace(gofakeit.Gender()),
				clean.Replace(gofakeit.Street()),
			}
			in := strings.Join(fields, delim)

			rec := Parse(in)
			assert.Equal(t, fields[0], rec.ReferenceID)
			assert.Equal(t, fields[1], rec.Name)
			assert.Equal(t, fields[2], rec.DateOfBirth)
			assert.Equal(t, fields[3], rec.Gender)
			assert.Equal(t, fields[4], rec.Address)
		}
	}
}

func TestParse_NeverPanicsAndKeepsRawData(t *testing.T) {
	inputs := []string{
		"",
		"\x00\x01\x02\xff",
		"<?xml\x00\xff",
		"<?xml version=\"1.0\"?>" + strings.Repeat("<a>", 10000),
		"<?xml version=\"1.0\"?><!DOCTYPE x [<!ENTITY a \"b\">]><PrintLetterBarcodeData name=\"&a;\"/>",
		"<<<>>>",
		strings.Repeat("|", 1000),
		strings.Repeat(",\n", 1000),
	}
	for i := 0; i < 100; i++ {
		inputs = append(inputs, markupPrefix+gofakeit.LetterN(uint(i+1)), gofakeit.Sentence(i%20+1))
	}

	for _, in := range inputs {
		var rec models.IdentityRecord
		require.NotPanics(t, func() { rec = Parse(in) })
		assert.Equal(t, in, rec.RawData)
	}
}

func TestParse_Idempotent(t *testing.T) {
	inputs := []string{sampleMarkup, "REF123|Jane Doe", "<?xml broken", `<?xml version="1.0"?><x/>`, ""}
	for _, in := range inputs {
		assert.Equal(t, Parse(in), Parse(in))
	}
}

func TestParse_Concurrent(t *testing.T) {
	inputs := []string{sampleMarkup, "REF123|Jane Doe|1990-01-01|F|123 Main St", "<?xml bad"}
	want := make([]models.IdentityRecord, len(inputs))
	for i, in := range inputs {
		want[i] = Parse(in)
	}

	var wg sync.WaitGroup
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				idx := i % len(inputs)
				assert.Equal(t, want[idx], Parse(inputs[idx]))
			}
		}()
	}
	wg.Wait()
}

func quoteAttr(t *testing.T, v string) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, xml.EscapeText(&buf, []byte(v)))
	return `"` + strings.ReplaceAll(buf.String(), `"`, "&quot;") + `"`
}
