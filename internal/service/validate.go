package service

import "github.com/go-playground/validator/v10"

// inputValidate checks request structs tagged with `validate`
var inputValidate = validator.New()
