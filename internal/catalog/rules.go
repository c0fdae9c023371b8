package catalog

import (
	"errors"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Field rules shared by the web forms and the seed loader.

func TitleRules() []validation.Rule {
	return []validation.Rule{
		validation.Required.Error("title is required"),
		validation.RuneLength(1, 80).Error("title must be at most 80 characters"),
	}
}

func ISBNRules() []validation.Rule {
	return []validation.Rule{
		validation.Required.Error("isbn is required"),
		validation.Length(13, 13).Error("isbn must be exactly 13 digits"),
		is.Digit.Error("isbn must be exactly 13 digits"),
	}
}

func DescriptionRules() []validation.Rule {
	return []validation.Rule{
		validation.RuneLength(0, 250).Error("description must be at most 250 characters"),
	}
}

// NameListRules validates a comma-separated topic or author list. The list
// must still name someone once blank fragments are dropped.
func NameListRules(field string) []validation.Rule {
	return []validation.Rule{
		validation.Required.Error(field + " are required"),
		validation.RuneLength(3, 250).Error(field + " must be 3 to 250 characters"),
		NonEmptyNamesRule(field),
	}
}

// NonEmptyNamesRule rejects a string or string slice that SplitNames reduces
// to nothing, such as " , , ".
func NonEmptyNamesRule(field string) validation.Rule {
	return validation.By(func(value interface{}) error {
		var names []string
		switch v := value.(type) {
		case string:
			names = SplitNames(v)
		case []string:
			names = SplitNames(v...)
		}
		if len(names) == 0 {
			return errors.New(field + " must name at least one entry")
		}
		return nil
	})
}

func TopicNameRules() []validation.Rule {
	return []validation.Rule{
		validation.Required.Error("name is required"),
		validation.RuneLength(1, 80).Error("name must be at most 80 characters"),
	}
}

func PublicationMonthRules() []validation.Rule {
	return []validation.Rule{
		validation.Required.Error("publication date is required"),
		validation.Match(regexp.MustCompile(`^\d\d-\d\d\d\d$`)).Error("publication date must use the MM-YYYY format"),
		validation.By(func(value interface{}) error {
			s, _ := value.(string)
			if _, err := ParsePublicationMonth(s); err != nil {
				var ve *ValidationError
				if errors.As(err, &ve) {
					return errors.New(ve.Message)
				}
				return err
			}
			return nil
		}),
	}
}
