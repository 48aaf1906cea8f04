package blogservice

import (
	"github.com/google/uuid"

	"github.com/blogmhq/blogm/internal/common"
)

func validateTitle(v *common.Validator, title string) {
	v.Check(title != "", "title", "must be provided")
	v.Check(v.CheckStringLength(title, 3, 200), "title", "must be between 3 and 200 characters long")
	v.Check(GenerateSlug(title) != "", "title", "must contain at least one letter or number")
}

func validateContent(v *common.Validator, content string) {
	v.Check(content != "", "content", "must be provided")
}

func validateUUID(v *common.Validator, id, name string) {
	v.Check(id != "", name, "must be provided")
	if id != "" {
		_, err := uuid.Parse(id)
		v.Check(err == nil, name, "must be a valid UUID")
	}
}
