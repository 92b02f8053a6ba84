package blog

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/toyz/axonmvc/pkg/locale"
	"github.com/toyz/axonmvc/pkg/mvc"
	"github.com/toyz/axonmvc/pkg/property"
)

// PostsController serves the post pages
type PostsController struct {
	*mvc.ActionController
	store    *Store
	detector *locale.Detector
	logger   *slog.Logger
}

// NewPostsController creates the controller for one dispatch pass
func NewPostsController(store *Store, detector *locale.Detector, logger *slog.Logger) *PostsController {
	c := &PostsController{
		ActionController: mvc.NewActionController("Posts", mvc.WithLogger(logger)),
		store:            store,
		detector:         detector,
		logger:           logger,
	}
	c.Handle("index", c.index).
		Handle("show", c.show, declarePost(false)).
		Handle("create", c.create, c.declareCreate).
		Handle("delete", c.delete, declarePost(true)).
		Handle("legacy", c.legacy)
	return c
}

func declarePost(required bool) mvc.ArgumentsDeclaration {
	return func(args *mvc.Arguments) error {
		post, err := args.New("post", "uuid")
		if err != nil {
			return err
		}
		post.SetRequired(required)
		return nil
	}
}

func (c *PostsController) declareCreate(args *mvc.Arguments) error {
	title, err := args.New("title", "string")
	if err != nil {
		return err
	}
	title.SetRequired(true).SetFilter(property.TrimFilter).SetValidation("min=3,max=120")

	body, err := args.New("body", "string")
	if err != nil {
		return err
	}
	body.SetFilter(property.StripTagsFilter).SetDefaultValue("")

	lang, err := args.New("locale", "any")
	if err != nil {
		return err
	}
	lang.SetShortName("l").SetPropertyEditor(locale.Editor{Detector: c.detector}, "")
	return nil
}

func (c *PostsController) index(_ context.Context, _ *mvc.ActionController) (mvc.ActionOutcome, error) {
	content, err := render("index", map[string]any{"Posts": c.store.All()})
	if err != nil {
		return mvc.ActionOutcome{}, err
	}
	c.Response().SetContent(content)
	return mvc.Continue(), nil
}

func (c *PostsController) show(_ context.Context, _ *mvc.ActionController) (mvc.ActionOutcome, error) {
	id, ok := c.Argument("post").(uuid.UUID)
	if !ok {
		return c.Forward("index")
	}

	post, found := c.store.Get(id)
	if !found {
		return c.ThrowStatus(http.StatusNotFound, mvc.WithContent(fmt.Sprintf("post %s does not exist", id)))
	}

	content, err := render("show", post)
	if err != nil {
		return mvc.ActionOutcome{}, err
	}
	c.Response().SetContent(content)
	return mvc.Continue(), nil
}

func (c *PostsController) create(_ context.Context, _ *mvc.ActionController) (mvc.ActionOutcome, error) {
	lang := c.detector.Fallback()
	if l, ok := c.Argument("locale").(*locale.Locale); ok {
		lang = l
	}

	title, ok := c.Argument("title").(string)
	if !ok {
		return c.ThrowStatus(http.StatusBadRequest, mvc.WithContent("a post needs a title"))
	}
	body, _ := c.Argument("body").(string)

	post := c.store.Create(title, body, lang.String())
	c.logger.Info("post created", "id", post.ID, "locale", post.Locale)

	return c.Redirect("/posts/" + post.ID.String())
}

func (c *PostsController) delete(_ context.Context, _ *mvc.ActionController) (mvc.ActionOutcome, error) {
	if req, ok := c.Request().(*mvc.WebRequest); ok && req.Method() == http.MethodGet {
		c.Response().SetHeader("Allow", http.MethodPost)
		return c.ThrowStatus(http.StatusMethodNotAllowed, mvc.WithContent("posts are deleted with POST"))
	}

	id, ok := c.Argument("post").(uuid.UUID)
	if !ok {
		return c.ThrowStatus(http.StatusBadRequest, mvc.WithContent("no post to delete"))
	}
	if !c.store.Delete(id) {
		return c.ThrowStatus(http.StatusNotFound, mvc.WithContent(fmt.Sprintf("post %s does not exist", id)))
	}
	c.logger.Info("post deleted", "id", id)
	return c.Redirect("/posts")
}

// legacy answers the old archive URLs
func (c *PostsController) legacy(_ context.Context, _ *mvc.ActionController) (mvc.ActionOutcome, error) {
	return c.Redirect("/posts", mvc.WithRedirectStatus(http.StatusMovedPermanently))
}
