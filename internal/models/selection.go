package models

import "strings"

// OtherName is the sentinel display name of the free-text "Other" platform,
// model and category rows.
const OtherName = "기타"

// IsOtherName reports whether name is the "Other" sentinel. It is the only
// place the sentinel string is compared.
func IsOtherName(name string) bool {
	return strings.TrimSpace(name) == OtherName
}

// SelectionKind tags which branch of a catalog selection applies.
type SelectionKind int

const (
	// SelectionNone means nothing was selected.
	SelectionNone SelectionKind = iota
	// SelectionNamed is a concrete catalog entry.
	SelectionNamed
	// SelectionOther is the "Other" entry, which requires free text.
	SelectionOther
)

func (k SelectionKind) String() string {
	switch k {
	case SelectionNamed:
		return "named"
	case SelectionOther:
		return "other"
	default:
		return "none"
	}
}

// ModelSelection is the model choice of a post after the sentinel has been
// resolved at the boundary.
type ModelSelection struct {
	Kind     SelectionKind
	Model    *AiModel
	FreeText string
}

// SelectModel converts a looked-up model (nil when unset) plus the free-text
// field into a tagged selection.
func SelectModel(model *AiModel, freeText string) ModelSelection {
	sel := ModelSelection{Model: model, FreeText: strings.TrimSpace(freeText)}
	switch {
	case model == nil:
		sel.Kind = SelectionNone
	case IsOtherName(model.Name):
		sel.Kind = SelectionOther
	default:
		sel.Kind = SelectionNamed
	}
	return sel
}

// PlatformSelection is the platform choice of a post.
type PlatformSelection struct {
	Kind     SelectionKind
	Platform *Platform
}

// SelectPlatform tags a looked-up platform.
func SelectPlatform(platform *Platform) PlatformSelection {
	switch {
	case platform == nil:
		return PlatformSelection{Kind: SelectionNone}
	case IsOtherName(platform.Name):
		return PlatformSelection{Kind: SelectionOther, Platform: platform}
	default:
		return PlatformSelection{Kind: SelectionNamed, Platform: platform}
	}
}

// CategorySelection is the category choice of a post.
type CategorySelection struct {
	Kind     SelectionKind
	Category *Category
	FreeText string
}

// SelectCategory tags a looked-up category.
func SelectCategory(category *Category, freeText string) CategorySelection {
	sel := CategorySelection{Category: category, FreeText: strings.TrimSpace(freeText)}
	switch {
	case category == nil:
		sel.Kind = SelectionNone
	case IsOtherName(category.Name):
		sel.Kind = SelectionOther
	default:
		sel.Kind = SelectionNamed
	}
	return sel
}
