package Controllers

import (
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/gofiber/fiber/v2"
)

var validate *validator.Validate
var trans ut.Translator

func init() {
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ = uni.GetTranslator("en")
	validate = validator.New()
	en_translations.RegisterDefaultTranslations(validate, trans)
}

// validateBody parses and validates a request DTO. On failure it writes the
// 400 response (field-level messages included) and returns false.
func validateBody(ctx *fiber.Ctx, dto interface{}) bool {
	if err := ctx.BodyParser(dto); err != nil {
		ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return false
	}
	if err := validate.Struct(dto); err != nil {
		fields := fiber.Map{}
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Translate(trans)
		}
		ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Validation failed",
			"message": "One or more fields are invalid",
			"fields":  fields,
		})
		return false
	}
	return true
}
