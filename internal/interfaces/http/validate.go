package http

import "github.com/go-playground/validator/v10"

// validate ejecuta las reglas declaradas en los tags `validate:` de los DTOs.
// Una sola instancia: el validador cachea la metadata de structs.
var validate = validator.New(validator.WithRequiredStructEnabled())
