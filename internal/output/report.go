package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/rpgo/buyhold/internal/domain"
)

// lookupFormatter resolves a format name, enriching the error with the available names.
func lookupFormatter(format string) (Formatter, error) {
	if f := GetFormatterByName(format); f != nil {
		return f, nil
	}
	return nil, fmt.Errorf("%w: %q. Try one of: %s (aliases: %s)", ErrUnsupportedFormat, format, strings.Join(AvailableFormatterNames(), ", "), strings.Join(AvailableFormatAliases(), ", "))
}

// WriteReport renders results in the named format to w.
func WriteReport(w io.Writer, results *domain.BatchResult, format string) error {
	f, err := lookupFormatter(format)
	if err != nil {
		return err
	}
	data, err := f.Format(results)
	if err != nil {
		return fmt.Errorf("%s report: %w", f.Name(), err)
	}
	_, err = w.Write(data)
	return err
}

// GenerateReport renders results in the named format to a timestamped file in dir and
// returns the file name.
func GenerateReport(results *domain.BatchResult, format, dir string) (string, error) {
	f, err := lookupFormatter(format)
	if err != nil {
		return "", err
	}
	return WriteFormatted(f, results, dir, ExtensionFor(f.Name()))
}
