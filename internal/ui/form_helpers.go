package ui

import (
	"strings"

	"github.com/rivo/tview"

	"github.com/plumber-cd/ez-desk/internal/domain"
)

// getFormItemByLabel is getFormItemByLabelIfPresent for labels that must exist.
func getFormItemByLabel(form *tview.Form, label string) tview.FormItem {
	item, ok := getFormItemByLabelIfPresent(form, label)
	if !ok {
		panic("form has no item labelled " + label)
	}
	return item
}

// getFormItemByLabelIfPresent matches the exact label first, then the first
// label starting with it so "Subject" finds "Subject *".
func getFormItemByLabelIfPresent(form *tview.Form, label string) (tview.FormItem, bool) {
	if i := form.GetFormItemIndex(label); i >= 0 {
		item := form.GetFormItem(i)
		return item, item != nil
	}
	for i := range form.GetFormItemCount() {
		if item := form.GetFormItem(i); item != nil && strings.HasPrefix(item.GetLabel(), label) {
			return item, true
		}
	}
	return nil, false
}

// fieldLabel decorates required fields with an asterisk.
func fieldLabel(f domain.Field) string {
	if f.Required {
		return f.Label + " *"
	}
	return f.Label
}

func fieldWidth(f domain.Field) int {
	if f.Width <= 0 || f.Width > FormFieldWidth {
		return FormFieldWidth
	}
	return f.Width
}

func findOptionIndex(options []string, value string) int {
	for i, option := range options {
		if option == value {
			return i
		}
	}
	return 0
}

// captureFormValues reads every schema field from a form built by
// buildRecordForm.
func captureFormValues(form *tview.Form, s domain.Schema) domain.Values {
	values := make(domain.Values, len(s.Fields))
	for _, f := range s.Fields {
		item, ok := getFormItemByLabelIfPresent(form, fieldLabel(f))
		if !ok {
			continue
		}
		switch field := item.(type) {
		case *tview.InputField:
			values[f.Key] = field.GetText()
		case *hintedTextArea:
			values[f.Key] = field.GetText()
		case *tview.DropDown:
			_, option := field.GetCurrentOption()
			values[f.Key] = option
		}
	}
	return values
}

// computeFormDialogHeight sums item rows plus the gaps between them, the
// button row with its gap, the border and the form padding.
func computeFormDialogHeight(form *tview.Form) int {
	count := form.GetFormItemCount()
	rows := 2 + 2
	for i := range count {
		rows += max(form.GetFormItem(i).GetFieldHeight(), tview.DefaultFormFieldHeight)
	}
	rows += max(count-1, 0)
	if form.GetButtonCount() > 0 {
		rows += 2
	}
	return min(rows, maxDialogViewportHeight)
}

// computeFormDialogWidth fits the widest label next to a full-width field.
func computeFormDialogWidth(form *tview.Form) int {
	label := 0
	for i := range form.GetFormItemCount() {
		if item := form.GetFormItem(i); item != nil {
			label = max(label, tview.TaggedStringWidth(item.GetLabel()))
		}
	}
	return 2 + 2 + label + 1 + FormFieldWidth
}
