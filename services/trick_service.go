package services

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strconv"
	"time"

	"trickipedia/models"
	"trickipedia/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

type TrickService struct {
	DB          *gorm.DB
	Progression *ProgressionService
}

func NewTrickService(db *gorm.DB, progression *ProgressionService) *TrickService {
	return &TrickService{DB: db, Progression: progression}
}

var titleCaser = cases.Title(language.English)

// MinimalTrick struct for lightweight listing
type MinimalTrick struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Slug       string   `json:"slug"`
	CategoryID string   `json:"category_id"`
	Difficulty int      `json:"difficulty"`
	IsCombo    bool     `json:"is_combo"`
	Tags       []string `json:"tags"`
	ImageURL   string   `json:"image_url,omitempty"` // first image, if any
}

// CreateTrickRequest is the JSON body for trick creation.
type CreateTrickRequest struct {
	CategoryID      string   `json:"category_id" validate:"required"`
	Name            string   `json:"name" validate:"required"`
	Description     string   `json:"description"`
	StepGuide       string   `json:"step_by_step_guide"`
	TipsAndTricks   string   `json:"tips_and_tricks"`
	CommonMistakes  string   `json:"common_mistakes"`
	SafetyNotes     string   `json:"safety_notes"`
	VideoURLs       []string `json:"video_urls"`
	ImageURLs       []string `json:"image_urls"`
	SourceURLs      []string `json:"source_urls"`
	Tags            []string `json:"tags"`
	PrerequisiteIDs []string `json:"prerequisite_ids"`
	Difficulty      int      `json:"difficulty"`
	IsCombo         bool     `json:"is_combo"`
	ComboComponents []string `json:"combo_components"`
}

// UpdateTrickRequest defines the structure for partial updates
type UpdateTrickRequest struct {
	Name            *string   `json:"name,omitempty"`
	CategoryID      *string   `json:"category_id,omitempty"`
	Description     *string   `json:"description,omitempty"`
	StepGuide       *string   `json:"step_by_step_guide,omitempty"`
	TipsAndTricks   *string   `json:"tips_and_tricks,omitempty"`
	CommonMistakes  *string   `json:"common_mistakes,omitempty"`
	SafetyNotes     *string   `json:"safety_notes,omitempty"`
	VideoURLs       *[]string `json:"video_urls,omitempty"`
	ImageURLs       *[]string `json:"image_urls,omitempty"`
	SourceURLs      *[]string `json:"source_urls,omitempty"`
	Tags            *[]string `json:"tags,omitempty"`
	PrerequisiteIDs *[]string `json:"prerequisite_ids,omitempty"`
	Difficulty      *int      `json:"difficulty,omitempty"`
	IsCombo         *bool     `json:"is_combo,omitempty"`
	ComboComponents *[]string `json:"combo_components,omitempty"`
}

// CreateTrick creates a new **draft** trick and awards creation XP.
func (s *TrickService) CreateTrick(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var req CreateTrickRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Name == "" || req.CategoryID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name and category_id are required"})
	}
	if req.Difficulty < 1 || req.Difficulty > 10 {
		req.Difficulty = 1
	}

	var category models.Category
	if err := s.DB.Where("id = ?", req.CategoryID).First(&category).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown category"})
	}

	trick := &models.Trick{
		ID:              uuid.NewString(),
		CategoryID:      req.CategoryID,
		Name:            titleCaser.String(req.Name),
		Slug:            s.uniqueSlug(req.Name),
		Description:     req.Description,
		StepGuide:       req.StepGuide,
		TipsAndTricks:   req.TipsAndTricks,
		CommonMistakes:  req.CommonMistakes,
		SafetyNotes:     req.SafetyNotes,
		VideoURLs:       req.VideoURLs,
		ImageURLs:       req.ImageURLs,
		SourceURLs:      req.SourceURLs,
		Tags:            req.Tags,
		PrerequisiteIDs: req.PrerequisiteIDs,
		Difficulty:      req.Difficulty,
		IsCombo:         req.IsCombo,
		ComboComponents: req.ComboComponents,
		Status:          models.TrickStatusDraft,
		CreatedBy:       userID,
	}

	if err := s.DB.Create(trick).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to create trick", "cause": err.Error(),
		})
	}

	award, err := s.Progression.RecordTrickCreation(userID, trick)
	if err != nil {
		// The trick exists; losing the award is recoverable, failing the request is not.
		log.Printf("⚠️ XP award failed for trick %s: %v", trick.Slug, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"trick": trick,
		"award": award,
	})
}

// UpdateTrick applies a partial update and awards edit XP based on the diff.
func (s *TrickService) UpdateTrick(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	trickID := c.Params("id")

	var req UpdateTrickRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	var trick models.Trick
	if err := s.DB.Where("id = ?", trickID).First(&trick).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "trick not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error", "cause": err.Error()})
	}

	old := trick // value copy for the scoring diff

	if req.Name != nil {
		trick.Name = titleCaser.String(*req.Name)
	}
	if req.CategoryID != nil {
		trick.CategoryID = *req.CategoryID
	}
	if req.Description != nil {
		trick.Description = *req.Description
	}
	if req.StepGuide != nil {
		trick.StepGuide = *req.StepGuide
	}
	if req.TipsAndTricks != nil {
		trick.TipsAndTricks = *req.TipsAndTricks
	}
	if req.CommonMistakes != nil {
		trick.CommonMistakes = *req.CommonMistakes
	}
	if req.SafetyNotes != nil {
		trick.SafetyNotes = *req.SafetyNotes
	}
	if req.VideoURLs != nil {
		trick.VideoURLs = *req.VideoURLs
	}
	if req.ImageURLs != nil {
		trick.ImageURLs = *req.ImageURLs
	}
	if req.SourceURLs != nil {
		trick.SourceURLs = *req.SourceURLs
	}
	if req.Tags != nil {
		trick.Tags = *req.Tags
	}
	if req.PrerequisiteIDs != nil {
		trick.PrerequisiteIDs = *req.PrerequisiteIDs
	}
	if req.Difficulty != nil {
		trick.Difficulty = *req.Difficulty
	}
	if req.IsCombo != nil {
		trick.IsCombo = *req.IsCombo
	}
	if req.ComboComponents != nil {
		trick.ComboComponents = *req.ComboComponents
	}

	if err := s.DB.Save(&trick).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to update trick", "cause": err.Error(),
		})
	}

	award, err := s.Progression.RecordTrickEdit(userID, &old, &trick)
	if err != nil {
		log.Printf("⚠️ XP award failed for trick edit %s: %v", trick.Slug, err)
	}

	return c.JSON(fiber.Map{
		"trick": trick,
		"award": award,
	})
}

// PublishTrick flips a trick to published (optionally scheduling it) and
// awards the publish XP via the edit scorer.
func (s *TrickService) PublishTrick(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	trickID := c.Params("id")

	var req struct {
		PublishAt *time.Time `json:"publish_at,omitempty"`
	}
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	var trick models.Trick
	if err := s.DB.Where("id = ?", trickID).First(&trick).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "trick not found"})
	}
	if trick.Status == models.TrickStatusPublished {
		return c.JSON(fiber.Map{"trick": trick})
	}

	old := trick

	if req.PublishAt != nil && req.PublishAt.After(time.Now()) {
		trick.Status = models.TrickStatusScheduled
		trick.PublishAt = req.PublishAt
	} else {
		trick.Status = models.TrickStatusPublished
		trick.PublishAt = nil
	}

	if err := s.DB.Save(&trick).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to publish trick", "cause": err.Error(),
		})
	}

	var award *AwardResult
	if trick.Status == models.TrickStatusPublished {
		var err error
		award, err = s.Progression.RecordTrickEdit(userID, &old, &trick)
		if err != nil {
			log.Printf("⚠️ XP award failed for publish %s: %v", trick.Slug, err)
		}
	}

	return c.JSON(fiber.Map{"trick": trick, "award": award})
}

// DeleteTrick soft-deletes a trick (author or moderator only).
func (s *TrickService) DeleteTrick(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	trickID := c.Params("id")

	var trick models.Trick
	if err := s.DB.Where("id = ?", trickID).First(&trick).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "trick not found"})
	}
	if trick.CreatedBy != userID && !hasRole(c, "moderator", "admin") {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "not the author"})
	}

	if err := s.DB.Delete(&trick).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to delete trick", "cause": err.Error(),
		})
	}
	return c.JSON(fiber.Map{"deleted": trickID})
}

// GetAllTricks lists published tricks with optional filters.
func (s *TrickService) GetAllTricks(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	size, _ := strconv.Atoi(c.Query("size", "20"))
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}

	db := s.DB.Model(&models.Trick{}).Where("status = ?", models.TrickStatusPublished)
	if cat := c.Query("category"); cat != "" {
		db = db.Where("category_id = ?", cat)
	}
	if diff := c.Query("difficulty"); diff != "" {
		if d, err := strconv.Atoi(diff); err == nil {
			db = db.Where("difficulty = ?", d)
		}
	}

	var total int64
	db.Count(&total)

	var tricks []models.Trick
	if err := db.Order("created_at DESC").
		Limit(size).Offset((page - 1) * size).
		Find(&tricks).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list tricks"})
	}

	return c.JSON(fiber.Map{
		"tricks":      tricks,
		"page":        page,
		"size":        size,
		"total_items": total,
		"total_pages": (total + int64(size) - 1) / int64(size),
	})
}

// GetMinimalTricks returns a lightweight listing for index pages.
func (s *TrickService) GetMinimalTricks(c *fiber.Ctx) error {
	var tricks []models.Trick
	if err := s.DB.Where("status = ?", models.TrickStatusPublished).
		Order("name ASC").
		Find(&tricks).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list tricks"})
	}

	res := make([]MinimalTrick, len(tricks))
	for i, t := range tricks {
		m := MinimalTrick{
			ID:         t.ID,
			Name:       t.Name,
			Slug:       t.Slug,
			CategoryID: t.CategoryID,
			Difficulty: t.Difficulty,
			IsCombo:    t.IsCombo,
			Tags:       t.Tags,
		}
		if len(t.ImageURLs) > 0 {
			m.ImageURL = t.ImageURLs[0]
		}
		res[i] = m
	}
	return c.JSON(res)
}

// GetTrickBySlug returns one trick. Drafts are only visible to their author.
func (s *TrickService) GetTrickBySlug(c *fiber.Ctx) error {
	var trick models.Trick
	if err := s.DB.Where("slug = ?", c.Params("slug")).First(&trick).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "trick not found"})
	}
	if trick.Status != models.TrickStatusPublished {
		userID, _ := c.Locals("user_id").(string)
		if userID == "" || (trick.CreatedBy != userID && !hasRole(c, "moderator", "admin")) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "trick not found"})
		}
	}
	return c.JSON(trick)
}

// UploadTrickMedia stores an image/video on R2 and appends its URL.
func (s *TrickService) UploadTrickMedia(c *fiber.Ctx) error {
	trickID := c.Params("id")

	var trick models.Trick
	if err := s.DB.Where("id = ?", trickID).First(&trick).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "trick not found"})
	}

	mediaFile, err := c.FormFile("media")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "media file is required"})
	}
	if mediaFile.Size > 100*1024*1024 { // 100MB
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file too large (max 100MB)"})
	}

	ext := filepath.Ext(mediaFile.Filename)
	if ext == "" {
		ext = ".bin"
	}
	key := "tricks/" + trick.ID + "/" + uuid.NewString() + ext

	url, err := utils.UploadFileToR2(mediaFile, key)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "failed to upload media", "cause": err.Error()})
	}

	kind := c.FormValue("kind", "image")
	if kind == "video" {
		trick.VideoURLs = append(trick.VideoURLs, url)
	} else {
		trick.ImageURLs = append(trick.ImageURLs, url)
	}
	if err := s.DB.Save(&trick).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save media URL"})
	}

	return c.JSON(fiber.Map{"url": url, "trick": trick})
}

// ImportMediaBundle extracts an uploaded zip of images and attaches each
// entry to the trick via R2.
func (s *TrickService) ImportMediaBundle(c *fiber.Ctx) error {
	trickID := c.Params("id")

	var trick models.Trick
	if err := s.DB.Where("id = ?", trickID).First(&trick).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "trick not found"})
	}

	bundle, err := c.FormFile("bundle")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bundle file is required"})
	}

	localPath := utils.GetUploadPath("bundles/" + uuid.NewString() + ".zip")
	if err := utils.SaveFile(bundle, localPath); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save bundle"})
	}

	urls, err := utils.UploadMediaBundleToR2(localPath, "tricks/"+trick.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "failed to import bundle", "cause": err.Error()})
	}

	trick.ImageURLs = append(trick.ImageURLs, urls...)
	if err := s.DB.Save(&trick).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save media URLs"})
	}

	return c.JSON(fiber.Map{"imported": len(urls), "trick": trick})
}

// --- Categories ---

func (s *TrickService) GetCategories(c *fiber.Ctx) error {
	var categories []models.Category
	if err := s.DB.Order("name ASC").Find(&categories).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list categories"})
	}
	return c.JSON(categories)
}

func (s *TrickService) CreateCategory(c *fiber.Ctx) error {
	var req struct {
		Name        string `json:"name" validate:"required"`
		Description string `json:"description"`
		IconURL     string `json:"icon_url"`
	}
	if err := c.BodyParser(&req); err != nil || req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name is required"})
	}

	category := models.Category{
		ID:          uuid.NewString(),
		Name:        titleCaser.String(req.Name),
		Slug:        slug.Make(req.Name),
		Description: req.Description,
		IconURL:     req.IconURL,
	}
	if err := s.DB.Create(&category).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to create category", "cause": err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

// uniqueSlug makes a URL slug from the trick name, suffixing on collision.
func (s *TrickService) uniqueSlug(name string) string {
	base := slug.Make(name)
	candidate := base
	for i := 2; ; i++ {
		var count int64
		s.DB.Model(&models.Trick{}).Where("slug = ?", candidate).Count(&count)
		if count == 0 {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

// hasRole reports whether the request's user context carries any of the
// given roles.
func hasRole(c *fiber.Ctx, roles ...string) bool {
	userRoles, _ := c.Locals("user_roles").([]string)
	for _, have := range userRoles {
		for _, want := range roles {
			if have == want {
				return true
			}
		}
	}
	return false
}
