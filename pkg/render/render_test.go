package render

import (
	"testing"

	"github.com/gejjech/flowviz/pkg/errors"
)

func TestValidateFormat(t *testing.T) {
	for _, format := range []string{FormatPNG, FormatSVG, FormatPDF} {
		if err := ValidateFormat(format); err != nil {
			t.Errorf("ValidateFormat(%q) = %v, want nil", format, err)
		}
	}
	for _, format := range []string{"", "gif", "PNG", "jpeg"} {
		err := ValidateFormat(format)
		if !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) = %v, want INVALID_FORMAT", format, err)
		}
	}
}
