package services

import (
	"errors"
	"log"
	"time"

	"trickipedia/localstore"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// GymService exposes the gym management demo: an offline-first sandbox over
// the local store, fully independent of the hosted database. Each record
// type is a plain struct the store treats as an opaque keyed document.
type GymService struct {
	Store *localstore.Store
}

func NewGymService(store *localstore.Store) *GymService {
	return &GymService{Store: store}
}

type Member struct {
	ID       string    `json:"id"`
	FullName string    `json:"full_name"`
	Email    string    `json:"email"`
	Phone    string    `json:"phone,omitempty"`
	JoinedAt time.Time `json:"joined_at"`
	Active   bool      `json:"active"`
}

func (m Member) RecordID() string { return m.ID }

type GymClass struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Instructor string   `json:"instructor"`
	Schedule   string   `json:"schedule"` // e.g., "Mon/Wed 18:00"
	Capacity   int      `json:"capacity"`
	Enrolled   []string `json:"enrolled"` // member ids
}

func (g GymClass) RecordID() string { return g.ID }

type Equipment struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Condition   string     `json:"condition"` // good | worn | broken
	PurchasedAt *time.Time `json:"purchased_at,omitempty"`
}

func (e Equipment) RecordID() string { return e.ID }

type Payment struct {
	ID       string    `json:"id"`
	MemberID string    `json:"member_id"`
	Amount   float64   `json:"amount"`
	Method   string    `json:"method"` // cash | card | transfer
	PaidAt   time.Time `json:"paid_at"`
}

func (p Payment) RecordID() string { return p.ID }

type Attendance struct {
	ID        string    `json:"id"`
	MemberID  string    `json:"member_id"`
	ClassID   string    `json:"class_id,omitempty"`
	CheckedIn time.Time `json:"checked_in"`
}

func (a Attendance) RecordID() string { return a.ID }

// collectionHandlers wires generic store CRUD for one record type under
// /gym/<collection>.
func collectionHandlers[T localstore.Record](s *GymService, group fiber.Router, collection string, assignID func(*T)) {
	group.Get("/"+collection, func(c *fiber.Ctx) error {
		records, err := localstore.GetAll[T](c.Context(), s.Store, collection)
		if err != nil {
			return storeError(c, err)
		}
		if records == nil {
			records = []T{}
		}
		return c.JSON(records)
	})

	group.Get("/"+collection+"/:id", func(c *fiber.Ctx) error {
		rec, found, err := localstore.GetByID[T](c.Context(), s.Store, collection, c.Params("id"))
		if err != nil {
			return storeError(c, err)
		}
		if !found {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
		}
		return c.JSON(rec)
	})

	group.Post("/"+collection, func(c *fiber.Ctx) error {
		var rec T
		if err := c.BodyParser(&rec); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		if rec.RecordID() == "" {
			assignID(&rec)
		}
		if err := localstore.Put(c.Context(), s.Store, collection, rec); err != nil {
			return storeError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(rec)
	})

	group.Put("/"+collection+"/:id", func(c *fiber.Ctx) error {
		var rec T
		if err := c.BodyParser(&rec); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		if rec.RecordID() != c.Params("id") {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "id mismatch"})
		}
		if err := localstore.Put(c.Context(), s.Store, collection, rec); err != nil {
			return storeError(c, err)
		}
		return c.JSON(rec)
	})

	group.Delete("/"+collection+"/:id", func(c *fiber.Ctx) error {
		if err := s.Store.DeleteByID(c.Context(), collection, c.Params("id")); err != nil {
			return storeError(c, err)
		}
		return c.JSON(fiber.Map{"deleted": c.Params("id")})
	})
}

// RegisterRoutes mounts every gym collection plus settings and demo reset.
func (s *GymService) RegisterRoutes(group fiber.Router) {
	collectionHandlers[Member](s, group, "members", func(m *Member) { m.ID = uuid.NewString() })
	collectionHandlers[GymClass](s, group, "classes", func(g *GymClass) { g.ID = uuid.NewString() })
	collectionHandlers[Equipment](s, group, "equipment", func(e *Equipment) { e.ID = uuid.NewString() })
	collectionHandlers[Payment](s, group, "payments", func(p *Payment) { p.ID = uuid.NewString() })
	collectionHandlers[Attendance](s, group, "attendance", func(a *Attendance) { a.ID = uuid.NewString() })

	group.Get("/settings", func(c *fiber.Ctx) error {
		settings, err := s.Store.GetOrInitSettings(c.Context())
		if err != nil {
			return storeError(c, err)
		}
		return c.JSON(settings)
	})

	group.Patch("/settings", func(c *fiber.Ctx) error {
		var patch localstore.SettingsPatch
		if err := c.BodyParser(&patch); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		settings, err := s.Store.UpdateSettings(c.Context(), patch)
		if err != nil {
			return storeError(c, err)
		}
		return c.JSON(settings)
	})

	// Demo reset: wipe all sandbox data but keep settings.
	group.Post("/reset", func(c *fiber.Ctx) error {
		if err := s.Store.ClearAll(c.Context()); err != nil {
			return storeError(c, err)
		}
		log.Printf("🧹 Gym sandbox reset by %v", c.Locals("user_id"))
		return c.JSON(fiber.Map{"reset": true})
	})
}

func storeError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, localstore.ErrInvalidRecord):
		status = fiber.StatusBadRequest
	case errors.Is(err, localstore.ErrUnknownCollection):
		status = fiber.StatusNotFound
	case errors.Is(err, localstore.ErrStorageUnavailable):
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(fiber.Map{"error": "gym store operation failed", "cause": err.Error()})
}
