package userservice

import (
	"github.com/blogmhq/blogm/internal/common"
)

func validateName(v *common.Validator, name string) {
	v.Check(name != "", "name", "must be provided")
	v.Check(v.CheckStringLength(name, 2, 100), "name", "must be between 2 and 100 characters long")
}

func validateEmail(v *common.Validator, email string) {
	v.Check(email != "", "email", "must be provided")
	v.Check(common.EmailRX.MatchString(email), "email", "must be a valid email address")
}

func validatePassword(v *common.Validator, password string) {
	v.Check(password != "", "password", "must be provided")
	v.Check(v.CheckStringLength(password, 8, 72), "password", "must be between 8 and 72 characters long")
}

func validateOAuthProfile(v *common.Validator, p *OAuthProfile) {
	v.Check(p.Provider == "google", "provider", "unsupported provider")
	v.Check(p.ExternalID != "", "external_id", "must be provided")
	validateEmail(v, p.Email)
	v.Check(p.DisplayName != "", "display_name", "must be provided")
}
