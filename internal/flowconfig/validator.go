package flowconfig

import (
	"regexp"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validatorOnce sync.Once
	validatorInst *validator.Validate

	semverPattern      = regexp.MustCompile(`^\d+\.\d+\.\d+(?:-[0-9A-Za-z-.]+)?(?:\+[0-9A-Za-z-.]+)?$`)
	activityNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9 _-]*$`)
)

// validatorInstance returns the shared *validator.Validate used to check
// structural shape (required fields, field formats) before a Document is
// resolved against an ActivityRegistry. Reference existence (does "uses:
// fetch-data" name a registered ActivityFunc?) is checked later, in
// Resolve, since it depends on a registry the validator knows nothing about.
func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		_ = v.RegisterValidation("semver", func(fl validator.FieldLevel) bool {
			return semverPattern.MatchString(fl.Field().String())
		})

		_ = v.RegisterValidation("activity_name", func(fl validator.FieldLevel) bool {
			return activityNamePattern.MatchString(fl.Field().String())
		})

		_ = v.RegisterValidation("activity_ref", func(fl validator.FieldLevel) bool {
			return activityNamePattern.MatchString(fl.Field().String())
		})

		validatorInst = v
	})
	return validatorInst
}

func validateDocument(doc *Document) error {
	if err := validatorInstance().Struct(doc); err != nil {
		return err
	}
	for i := range doc.Activities {
		if err := validateKindShape(&doc.Activities[i]); err != nil {
			return err
		}
		if doc.Activities[i].Pipeline != nil {
			if err := validateDocument(doc.Activities[i].Pipeline); err != nil {
				return err
			}
		}
	}
	return nil
}
