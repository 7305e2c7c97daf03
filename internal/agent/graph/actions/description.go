package actions

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/catalog-assistant/server/internal/agent/model"
	errx "github.com/catalog-assistant/server/internal/core/error"
)

const previewRunes = 300

// ErrEmptyDescription is returned when the generator proposed no text at all.
var ErrEmptyDescription = errors.New("no description content proposed")

// MaterializeDescription pairs the product's current description fields with
// the generated ones. Product identity always comes from the catalog.
func MaterializeDescription(in model.DescriptionIntent, snap *model.CatalogSnapshot) (*model.MaterializedAction, error) {
	if snap == nil {
		return nil, errx.Wrap(errx.ErrUnresolvableProduct, nil)
	}
	proposed := model.DescriptionContent{
		Description:      in.Description,
		ShortDescription: in.ShortDescription,
		MetaTitle:        in.MetaTitle,
		MetaDescription:  in.MetaDescription,
	}
	if strings.TrimSpace(proposed.Description) == "" && strings.TrimSpace(proposed.ShortDescription) == "" {
		return nil, errx.Wrap(errx.ErrMalformedModelOutput, ErrEmptyDescription)
	}

	details := model.DescriptionDetails{
		ProductID:   snap.Product.ID,
		ProductName: snap.Product.Name,
		Current: model.DescriptionContent{
			Description:      snap.Product.Description,
			ShortDescription: snap.Product.ShortDescription,
		},
		Proposed: proposed,
	}
	return &model.MaterializedAction{
		Type:        model.ActionUpdateDescription,
		Description: fmt.Sprintf("Update description of %s", details.ProductName),
		Details:     details,
		Status:      model.StatusPending,
		Summary:     descriptionSummary(details),
	}, nil
}

func descriptionSummary(d model.DescriptionDetails) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Proposed new description for %q.\n", d.ProductName)
	writeField(&b, "Short description", d.Proposed.ShortDescription)
	writeField(&b, "Description", d.Proposed.Description)
	writeField(&b, "SEO title", d.Proposed.MetaTitle)
	writeField(&b, "SEO description", d.Proposed.MetaDescription)
	b.WriteString("Approve to apply these changes.")
	return b.String()
}

func writeField(b *strings.Builder, label, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	fmt.Fprintf(b, "%s: %s\n", label, preview(value))
}

func preview(s string) string {
	if utf8.RuneCountInString(s) <= previewRunes {
		return s
	}
	return string([]rune(s)[:previewRunes]) + "..."
}
