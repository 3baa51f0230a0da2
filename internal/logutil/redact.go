package logutil

import (
	"fmt"
	"io"
	"regexp"
	"strings"
)

const (
	Redaction = "***"
)

var (
	// PIIFields are redacted from every log line written by New.
	PIIFields = []string{"name", "email", "phone", "ssn", "password"}
)

type (
	redactingWriter struct {
		out io.Writer
		re  *regexp.Regexp
	}
)

// FilterDatum replaces the value of each `field=value<separator>` pair in
// message with redaction.
func FilterDatum(fields []string, redaction, message, separator string) string {
	for _, f := range fields {
		re := regexp.MustCompile(fmt.Sprintf(`%v=.*?%v`, regexp.QuoteMeta(f), regexp.QuoteMeta(separator)))
		message = re.ReplaceAllLiteralString(message, fmt.Sprintf("%v=%v%v", f, redaction, separator))
	}
	return message
}

// RedactingWriter rewrites `"field":"value"` pairs of JSON log lines before
// handing them to out. zerolog writes one event per Write call, which is
// what makes a per-call rewrite safe.
func RedactingWriter(out io.Writer, fields ...string) io.Writer {
	if len(fields) == 0 {
		return out
	}
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = regexp.QuoteMeta(f)
	}
	re := regexp.MustCompile(fmt.Sprintf(`"(%v)":"(?:[^"\\]|\\.)*"`, strings.Join(quoted, "|")))
	return &redactingWriter{out: out, re: re}
}

func (r *redactingWriter) Write(p []byte) (int, error) {
	redacted := r.re.ReplaceAll(p, []byte(`"$1":"`+Redaction+`"`))
	if _, err := r.out.Write(redacted); err != nil {
		return 0, err
	}
	// report the original length, zerolog treats short writes as errors
	return len(p), nil
}
