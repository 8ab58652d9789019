package config

const (
	//? These paths must match the paths in the embed directive

	StaticLocalDir = "static"
	StaticUrlPath  = "/" + StaticLocalDir + "/"

	PostsUrlPath = "/post/"

	TemplatesLocalDir = "templates"

	TemplateLayout   = "layout.html"
	TemplateIndex    = "index.html"
	TemplatePost     = "post.html"
	TemplatePartials = "partials.html"
)
