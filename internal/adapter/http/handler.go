package http

import (
	_ "embed"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"resume-builder/internal/domain"
	"resume-builder/internal/normalize"
	"resume-builder/internal/usecase"
)

//go:embed static/form.html
var formPage []byte

// Handler serves the resume form and turns submissions into PDF or HTML.
type Handler struct {
	pipeline *usecase.Pipeline
	logger   *slog.Logger
}

func NewHandler(p *usecase.Pipeline, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{pipeline: p, logger: logger}
}

func (h *Handler) Form(c *fiber.Ctx) error {
	c.Type("html", "utf-8")
	return c.Send(formPage)
}

// Generate answers a form post with the PDF as an attachment.
func (h *Handler) Generate(c *fiber.Ctx) error {
	ctx := c.UserContext()
	f, err := formValues(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not read form data")
	}
	rec, err := h.pipeline.ParseForm(ctx, f)
	if err != nil {
		return h.fail(c, err)
	}
	pdf, doc, err := h.pipeline.Generate(ctx, rec, formOptions(f))
	if err != nil {
		return h.fail(c, err)
	}
	return sendPDF(c, pdf, doc.Filename)
}

// Preview answers a form post with the rendered HTML.
func (h *Handler) Preview(c *fiber.Ctx) error {
	ctx := c.UserContext()
	f, err := formValues(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not read form data")
	}
	rec, err := h.pipeline.ParseForm(ctx, f)
	if err != nil {
		return h.fail(c, err)
	}
	doc, err := h.pipeline.Preview(ctx, rec, formOptions(f))
	if err != nil {
		return h.fail(c, err)
	}
	c.Type("html", "utf-8")
	return c.SendString(doc.HTML)
}

// FromJSON accepts a JSON resume. ?format=html returns the preview, anything
// else the PDF; ?enhance=true applies the enhancer first.
func (h *Handler) FromJSON(c *fiber.Ctx) error {
	ctx := c.UserContext()
	rec, err := h.pipeline.ParseJSON(ctx, c.Body())
	if err != nil {
		return h.fail(c, err)
	}
	opts := usecase.Options{
		Enhance:    c.QueryBool("enhance", false),
		JobContext: c.Query("job_description"),
	}

	if strings.EqualFold(c.Query("format", "pdf"), "html") {
		doc, err := h.pipeline.Preview(ctx, rec, opts)
		if err != nil {
			return h.fail(c, err)
		}
		c.Type("html", "utf-8")
		return c.SendString(doc.HTML)
	}

	pdf, doc, err := h.pipeline.Generate(ctx, rec, opts)
	if err != nil {
		return h.fail(c, err)
	}
	return sendPDF(c, pdf, doc.Filename)
}

func sendPDF(c *fiber.Ctx, pdf []byte, filename string) error {
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(pdf)
}

func formOptions(f normalize.Form) usecase.Options {
	return usecase.Options{
		Enhance:    f.Flag(normalize.FieldEnhance),
		JobContext: f.Get(normalize.FieldJobDescription),
	}
}

// formValues reads urlencoded or multipart form posts, keeping repeated keys
// in submission order.
func formValues(c *fiber.Ctx) (normalize.Form, error) {
	ct := strings.ToLower(string(c.Request().Header.ContentType()))
	if strings.HasPrefix(ct, fiber.MIMEMultipartForm) {
		mf, err := c.MultipartForm()
		if err != nil {
			return nil, err
		}
		return normalize.Form(mf.Value), nil
	}

	f := normalize.Form{}
	c.Request().PostArgs().VisitAll(func(k, v []byte) {
		key := string(k)
		f[key] = append(f[key], string(v))
	})
	return f, nil
}

// fail maps pipeline errors onto responses. Validation errors name the field;
// export errors only say the document could not be generated.
func (h *Handler) fail(c *fiber.Ctx, err error) error {
	ctx := c.UserContext()
	if ve, ok := domain.AsValidation(err); ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": ve.Message,
			"kind":  ve.Kind,
			"field": ve.Field,
			"stage": "normalize",
		})
	}
	if ee, ok := domain.AsExport(err); ok {
		status := fiber.StatusInternalServerError
		if ee.Kind == domain.ContentOverflow {
			status = fiber.StatusUnprocessableEntity
		}
		return c.Status(status).JSON(fiber.Map{
			"error": "could not generate document",
			"kind":  ee.Kind,
			"stage": "export",
		})
	}
	h.logger.ErrorContext(ctx, "request failed", "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
}
