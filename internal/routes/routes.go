package routes

import (
	"html/template"
	"net/http"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-gonic/gin"

	"daybook/internal/utils"
	"daybook/web"
)

const FRONTEND_URL_KEY = "FrontendURL"

// TemplateFuncs returns the helpers available to every template.
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"status_text": http.StatusText,
	}
}

// HTMLRenderer parses the bundled templates.
func HTMLRenderer() multitemplate.Render {
	r := multitemplate.New()
	for _, name := range []string{"error.html.tmpl"} {
		tmpl := template.Must(template.New(name).Funcs(TemplateFuncs()).ParseFS(web.Templates, "templates/"+name))
		r.Add(name, tmpl)
	}
	return r
}

// Merge into existing gin.H
func H(c *gin.Context, data gin.H) gin.H {
	if data == nil {
		data = gin.H{}
	}
	data["FrontendURL"] = c.GetString(FRONTEND_URL_KEY)
	data["AppVersion"] = utils.GetVersion()
	return data
}

// Returns a HTML response with merged data
func HTML(c *gin.Context, code int, name string, data gin.H) {
	c.HTML(code, name, H(c, data))
}
