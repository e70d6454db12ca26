package site

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/vango-dev/waypoint/internal/content"
	"github.com/vango-dev/waypoint/pkg/router"
	"github.com/vango-dev/waypoint/pkg/server"
	. "github.com/vango-dev/waypoint/pkg/vdom"
)

// SiteName is shown in the document title.
const SiteName = "Waypoint"

// Shell is the root layout: document, navigation and footer.
func Shell(req *router.Request, children router.Slot) *VNode {
	return Html(Lang("en"),
		Head(
			Meta(Charset("utf-8")),
			Meta(Name("viewport"), Content("width=device-width, initial-scale=1")),
			Title(SiteName),
		),
		Body(
			Header(Class("site-header"),
				Nav(AriaLabel("Main"),
					router.ActiveLink(req.Path, "/", "Home"),
					router.ActiveLink(req.Path, "/blog", "Blog"),
					router.ActiveLink(req.Path, "/lessons", "Lessons"),
					router.ActiveLink(req.Path, "/guides", "Guides"),
					router.ActiveLink(req.Path, "/about", "About"),
				),
			),
			Main(ID("content"), children),
			Footer(Small(Text("Rendered on the server."))),
			server.ClientScript(),
		),
	)
}

func Home(req *router.Request, data any) *VNode {
	posts, _ := data.([]content.Post)
	return Section(Data("page", "home"),
		H1(Text("Welcome")),
		P(Text("A blog and a lesson catalogue, one route table.")),
		H2(Text("Recent posts")),
		postList(posts),
	)
}

func About(req *router.Request, data any) *VNode {
	return Section(Data("page", "about"),
		H1(Text("About")),
		P(Text("Every page here is matched, loaded and laid out by Waypoint.")),
	)
}

// BlogLayout frames every page under /blog.
func BlogLayout(req *router.Request, children router.Slot) *VNode {
	return Div(Class("blog"), Data("layout", "blog"),
		Aside(router.NavLink("/blog", "All posts")),
		children,
	)
}

func BlogIndex(req *router.Request, data any) *VNode {
	posts, _ := data.([]content.Post)
	return Section(Data("page", "blog"),
		H1(Text("Blog")),
		postList(posts),
	)
}

func PostPage(req *router.Request, data any) *VNode {
	post, _ := data.(content.Post)
	return Article(Data("page", "post"),
		H1(Text(post.Title)),
		published(post.Published),
		P(Class("summary"), Text(post.Summary)),
		P(Text(post.Body)),
		When(len(post.Tags) > 0, func() *VNode {
			return Ul(Class("tags"), Range(post.Tags, func(tag string, _ int) *VNode {
				return Li(Text(tag))
			}))
		}),
	)
}

// PostPlaceholder stands in for a post while it loads.
func PostPlaceholder(req *router.Request) *VNode {
	return Article(Class("loading"), AriaBusy(true), Data("page", "post-loading"),
		H1(Text(req.Params.Get("slug"))),
		P(Text("Loading…")),
	)
}

// PostFallback replaces a post that failed to load.
func PostFallback(req *router.Request, err error) *VNode {
	if errors.Is(err, router.ErrNotFound) {
		return Article(Role("alert"), Data("page", "post-missing"),
			H1(Text("Post not found")),
			P(Textf("There is no post called %q.", req.Params.Get("slug"))),
		)
	}
	return Article(Role("alert"), Data("page", "post-error"),
		H1(Text("Could not load post")),
		P(Text("Try again in a moment.")),
	)
}

// LessonTabs is the tab strip above every lesson page.
func LessonTabs(req *router.Request, children router.Slot) *VNode {
	return Div(Class("lessons"), Data("layout", "lessons"),
		Nav(Role("tablist"), AriaLabel("Tracks"),
			tab(req, "/lessons", "Basics"),
			tab(req, "/lessons/advanced", "Advanced"),
		),
		children,
	)
}

// tab marks itself selected only on an exact path match, so the basics
// tab at /lessons is not lit on /lessons/advanced.
func tab(req *router.Request, href, label string) *VNode {
	selected := req.Path == href
	attrs := []Attr{Role("tab"), AriaSelected(selected)}
	if selected {
		attrs = append(attrs, Class("active"), AriaCurrent("page"))
	}
	return router.NavLink(href, attrs, label)
}

func LessonList(req *router.Request, data any) *VNode {
	lessons, _ := data.([]content.Lesson)
	return Section(Data("page", "lessons"),
		Ol(Range(lessons, func(l content.Lesson, _ int) *VNode {
			return Li(
				router.NavLink(router.MustLink("/lessons/:id", router.Params{"id": strconv.Itoa(l.ID)}), l.Title),
				Small(Textf(" %s", minutes(l.Duration))),
			)
		})),
	)
}

func LessonPage(req *router.Request, data any) *VNode {
	lesson, _ := data.(content.Lesson)
	return Article(Data("page", "lesson"),
		H1(Text(lesson.Title)),
		P(Class("meta"), Textf("%s track, %s", lesson.Track, minutes(lesson.Duration))),
		Div(Class("body"), Text(lesson.Body)),
	)
}

// LessonFallback replaces a lesson that failed to load.
func LessonFallback(req *router.Request, err error) *VNode {
	msg := "Could not load lesson."
	if errors.Is(err, router.ErrNotFound) {
		msg = fmt.Sprintf("Lesson %s does not exist.", req.Params.Get("id"))
	}
	return Article(Role("alert"), Data("page", "lesson-error"), P(Text(msg)))
}

func NotFound(req *router.Request, data any) *VNode {
	return Section(Data("page", "not-found"),
		H1(Text("Page not found")),
		P(Textf("Nothing lives at %s.", req.Path)),
		router.NavLink("/", "Go home"),
	)
}

func postList(posts []content.Post) *VNode {
	return Ul(Class("posts"), Range(posts, func(p content.Post, _ int) *VNode {
		return Li(
			router.NavLink(router.MustLink("/blog/:slug", router.Params{"slug": p.Slug}), p.Title),
			Text(" "),
			published(p.Published),
		)
	}))
}

func published(t time.Time) *VNode {
	return Time_(DateTime(t.Format(time.DateOnly)), Text(t.Format("Jan 2, 2006")))
}

func minutes(d time.Duration) string {
	return fmt.Sprintf("%d min", int(d.Minutes()))
}
