// Package payload interprets the text decoded from an identity QR code.
//
// Two encodings are recognised. Payloads starting with an XML declaration
// carry identity fields as attributes of a PrintLetterBarcodeData element;
// anything else is treated as delimiter-separated fields in a fixed order.
// Parse always returns a record: faults end up in its ParseError field and
// RawData always holds the input verbatim.
package payload
