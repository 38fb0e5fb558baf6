package httpapi

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"

	"github.com/couchcryptid/warmer-colder-service/internal/domain"
	"github.com/couchcryptid/warmer-colder-service/internal/search"
)

var validate = validator.New()

const defaultSuggestCount = 5

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, session *search.Session, svc *search.Service, suggester *search.Suggester) {
	v1 := app.Group("/api/v1")

	v1.Get("/search", func(c *fiber.Ctx) error {
		var q searchQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		places, err := svc.Suggest(c.Context(), q.Query, q.Count)
		if err != nil {
			return err
		}
		if places == nil {
			places = []domain.Place{}
		}

		return c.JSON(fiber.Map{
			"query":  q.Query,
			"places": places,
		})
	})

	v1.Get("/compare", func(c *fiber.Ctx) error {
		if q := c.Query("q"); q != "" {
			cmp, err := session.Submit(c.Context(), q)
			if err != nil {
				return err
			}
			return c.JSON(cmp)
		}

		var coords coordQuery
		if err := coords.bind(c); err != nil {
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				return err
			}
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		cmp, err := session.SubmitPlace(c.Context(), coords.toPlace())
		if err != nil {
			return err
		}
		return c.JSON(cmp)
	})

	// The comparison the session last published: a completed interactive
	// search or a background refresh, whichever won the sequence race.
	v1.Get("/current", func(c *fiber.Ctx) error {
		cmp := session.Current()
		if cmp == nil {
			return fiber.NewError(fiber.StatusNotFound, "no comparison has been published yet")
		}
		return c.JSON(cmp)
	})

	// Each call is one keystroke of the type-ahead flow: it feeds the
	// debounced suggester and returns immediately. Deliveries arrive on the
	// companion stream endpoint.
	v1.Get("/suggest", func(c *fiber.Ctx) error {
		suggester.Update(c.Query("q"))
		return c.SendStatus(fiber.StatusAccepted)
	})

	v1.Get("/suggest/stream", handleSuggestStream(suggester))

	v1.Get("/recent", func(c *fiber.Ctx) error {
		entries, err := svc.Recent(c.Context())
		if err != nil {
			return err
		}
		if entries == nil {
			entries = []domain.RecentEntry{}
		}
		return c.JSON(fiber.Map{"entries": entries})
	})

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	app.Get("/readyz", handleReady(svc))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}

// handleSuggestStream serves suggestion deliveries as server-sent events.
// The suggester retains only the latest undelivered update, so the stream is
// single-consumer: one typing client at a time, matching the tool's shape.
func handleSuggestStream(suggester *search.Suggester) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, "text/event-stream")
		c.Set(fiber.HeaderCacheControl, "no-cache")
		c.Set(fiber.HeaderConnection, "keep-alive")

		c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
			for sug := range suggester.Updates() {
				event, err := sseEvent(sug)
				if err != nil {
					continue
				}
				if _, err := w.Write(event); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			}
		}))
		return nil
	}
}

// sseEvent renders one delivery as a server-sent event frame. A nil Places
// slice is sent as an empty list so clients can always clear on it.
func sseEvent(sug search.Suggestions) ([]byte, error) {
	if sug.Places == nil {
		sug.Places = []domain.Place{}
	}
	payload, err := json.Marshal(sug)
	if err != nil {
		return nil, err
	}
	return []byte("data: " + string(payload) + "\n\n"), nil
}

func handleReady(checker ReadinessChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "not ready",
				"error":  err.Error(),
			})
		}
		return c.JSON(fiber.Map{"status": "ready"})
	}
}

// searchQuery holds query parameters for the autosuggest endpoint.
type searchQuery struct {
	Query string `validate:"required,min=1"`
	Count int    `validate:"min=1,max=10"`
}

func (q *searchQuery) bind(c *fiber.Ctx) error {
	q.Query = c.Query("q")
	q.Count = c.QueryInt("count", defaultSuggestCount)
	return validate.Struct(q)
}

// coordQuery holds query parameters for a coordinate-addressed comparison,
// the shape used by recent-list and suggestion selections.
type coordQuery struct {
	Lat  float64 `validate:"gte=-90,lte=90"`
	Lon  float64 `validate:"gte=-180,lte=180"`
	Name string
}

func (q *coordQuery) bind(c *fiber.Ctx) error {
	latStr, lonStr := c.Query("lat"), c.Query("lon")
	if latStr == "" || lonStr == "" {
		return fiber.NewError(fiber.StatusBadRequest, "either q or lat and lon query parameters are required")
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "lat must be a number")
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "lon must be a number")
	}

	q.Lat, q.Lon = lat, lon
	q.Name = c.Query("name")
	return validate.Struct(q)
}

func (q coordQuery) toPlace() domain.Place {
	return domain.Place{
		Name:      q.Name,
		Latitude:  q.Lat,
		Longitude: q.Lon,
	}
}
