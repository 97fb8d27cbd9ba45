package rest

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/odpi/egeria-sub150/pkg/apierrors"
)

// FormatURL expands a URL template relative to root.
//
// Placeholders are positional, {0}, {1} and so on, and refer to params by
// index. Values before the first '?' are path-escaped, values after it are
// query-escaped. A placeholder without a matching parameter is reported as
// an InvalidParameterError.
func FormatURL(root, template string, params ...any) (string, error) {
	return formatURL("formatURL", root, template, params)
}

func formatURL(operation, root, template string, params []any) (string, error) {
	var b strings.Builder
	b.Grow(len(root) + len(template))
	b.WriteString(strings.TrimSuffix(root, "/"))

	inQuery := false
	for i := 0; i < len(template); {
		c := template[i]
		if c == '?' {
			inQuery = true
		}
		if c == '{' {
			if end := strings.IndexByte(template[i:], '}'); end > 1 {
				if idx, err := strconv.Atoi(template[i+1 : i+end]); err == nil {
					if idx < 0 || idx >= len(params) {
						return "", apierrors.NewInvalidParameter(operation, "template",
							"URL template %q references parameter {%d} but %d parameters were supplied",
							template, idx, len(params))
					}
					value := fmt.Sprint(params[idx])
					if inQuery {
						b.WriteString(url.QueryEscape(value))
					} else {
						b.WriteString(url.PathEscape(value))
					}
					i += end + 1
					continue
				}
			}
		}
		b.WriteByte(c)
		i++
	}

	return b.String(), nil
}
