package httpapi

import (
	"context"
	"errors"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/rainfall-prediction/internal/prediction"
	"github.com/i474232898/rainfall-prediction/internal/store"
	"github.com/i474232898/rainfall-prediction/internal/weather"
)

var validate = newValidator()

// newValidator reports JSON field names in validation errors.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// PredictionService is what the routes need from *prediction.Service.
type PredictionService interface {
	Predict(ctx context.Context, req prediction.Request) (prediction.Result, error)
	GetLatest(loc weather.Location) (prediction.Record, error)
	GetRange(loc weather.Location, from, to time.Time) ([]prediction.Record, error)
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service PredictionService) {
	predict := predictHandler(service)
	app.Post("/predict", predict)

	v1 := app.Group("/api/v1")
	v1.Post("/predict", predict)

	v1.Get("/predictions/latest", func(c *fiber.Ctx) error {
		locReq, err := parseLocationQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		rec, err := service.GetLatest(locReq.toLocation())
		if err != nil {
			return feedError(err, "no predictions for requested location")
		}

		return c.JSON(rec)
	})

	v1.Get("/predictions/history", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		loc := req.Location.toLocation()
		records, err := service.GetRange(loc, req.From, req.To)
		if err != nil {
			return feedError(err, "no predictions for requested range")
		}

		return c.JSON(fiber.Map{
			"location":    loc,
			"from":        req.From,
			"to":          req.To,
			"predictions": records,
		})
	})
}

// predictBody is the JSON body of POST /predict.
type predictBody struct {
	City    string `json:"city" validate:"required"`
	Country string `json:"country" validate:"required"`
	Date    string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Crop    string `json:"crop"`
}

// predictHandler reports every failure, whatever its kind, as 400 {"error": msg}.
func predictHandler(service PredictionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body predictBody
		if err := c.BodyParser(&body); err != nil {
			return badRequest(c, "invalid request body: "+err.Error())
		}
		if err := validate.Struct(body); err != nil {
			return badRequest(c, validationMessage(err))
		}

		res, err := service.Predict(c.UserContext(), prediction.Request{
			City:    body.City,
			Country: body.Country,
			Date:    body.Date,
			Crop:    body.Crop,
		})
		if err != nil {
			return badRequest(c, err.Error())
		}

		return c.JSON(res)
	}
}

// ErrorHandler is the centralized fiber error handler: every error leaves the
// service as {"error": "<message>"}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// validationMessage turns validator errors into a short client-facing message.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return "missing required field: " + fe.Field()
	case "datetime":
		return "invalid date: expected YYYY-MM-DD"
	default:
		return err.Error()
	}
}

func feedError(err error, notFound string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, notFound)
	case errors.Is(err, prediction.ErrNoStore):
		return fiber.NewError(fiber.StatusNotFound, "prediction feed is disabled")
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "failed to read predictions")
	}
}

// locationQuery holds query parameters for identifying a location.
type locationQuery struct {
	City    string `validate:"required"`
	Country string `validate:"required"`
}

func (l locationQuery) toLocation() weather.Location {
	return weather.Location{
		City:    l.City,
		Country: l.Country,
	}
}

func parseLocationQuery(c *fiber.Ctx) (locationQuery, error) {
	var q locationQuery

	q.City = c.Query("city")
	q.Country = c.Query("country")

	if err := validate.Struct(q); err != nil {
		return q, err
	}

	return q, nil
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	Location locationQuery
	From     time.Time `validate:"required"`
	To       time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	loc, err := parseLocationQuery(c)
	if err != nil {
		return err
	}
	h.Location = loc

	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = from
	h.To = to
	return nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
