package httperror

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"
)

// Handler is the central echo error handler. It recognizes three failure kinds:
// typed HttpError (its own status), validation failures (400) and Mongo server
// errors (406); anything else is reported as an internal error.
func Handler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var httpErr *HttpError
	if errors.As(err, &httpErr) {
		log.Printf("%d %s: %s", httpErr.Status, httpErr.StatusMessage, httpErr.Message)
		if err := c.JSON(httpErr.Status, echo.Map{"status": httpErr.Status}); err != nil {
			log.Printf("Error sending error response: %v", err)
		}
		return
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		log.Printf("400 Bad Request: %s", validationErrs.Error())
		if err := c.JSON(http.StatusBadRequest, echo.Map{"status": "400 Bad Request"}); err != nil {
			log.Printf("Error sending error response: %v", err)
		}
		return
	}

	var serverErr mongo.ServerError
	if errors.As(err, &serverErr) {
		log.Printf("406 Not accepted: %s", serverErr.Error())
		if err := c.JSON(http.StatusNotAcceptable, echo.Map{"status": "406 Not accepted"}); err != nil {
			log.Printf("Error sending error response: %v", err)
		}
		return
	}

	// Let router-level errors (404 route not found, 405) keep their codes
	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		log.Printf("%d: %v", echoErr.Code, echoErr.Message)
		if err := c.JSON(echoErr.Code, echo.Map{"status": echoErr.Code}); err != nil {
			log.Printf("Error sending error response: %v", err)
		}
		return
	}

	log.Printf("Unhandled error: %v", err)
	if err := c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()}); err != nil {
		log.Printf("Error sending error response: %v", err)
	}
}
