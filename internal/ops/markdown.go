package ops

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// md is the shared converter. goldmark converters are safe for concurrent
// use, so one immutable instance serves all requests.
var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

const htmlShellHead = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>converted</title>
</head>
<body>
`

const htmlShellFoot = `</body>
</html>
`

// MarkdownToHTML renders markdown into a standalone HTML document.
func MarkdownToHTML(in []byte) ([]byte, error) {
	if len(bytes.TrimSpace(in)) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidInput)
	}
	var body bytes.Buffer
	body.WriteString(htmlShellHead)
	if err := md.Convert(in, &body); err != nil {
		return nil, wrapProcessing(err)
	}
	body.WriteString(htmlShellFoot)
	return body.Bytes(), nil
}
