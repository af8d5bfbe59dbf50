// Package qrcode renders payment URLs as PNG QR codes.
//
// Hosted checkout pages, payment links and payment requests all end in a URL
// that a customer can open on a phone. Generate turns such a URL into an
// image; DataURI wraps it for direct use in HTML:
//
//	src, err := qrcode.DataURI(link.URL, qrcode.WithSize(320))
//	if err != nil {
//	    return err
//	}
//	fmt.Fprintf(w, `<img src="%s" alt="Pay">`, src)
//
// Encoding is delegated to github.com/skip2/go-qrcode.
package qrcode
