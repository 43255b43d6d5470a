package handlers

import (
	"bytes"
	"html/template"

	"github.com/gofiber/fiber/v2"
)

// formData feeds the form template. Raw field strings are echoed back so a
// rejected submission keeps whatever the user typed.
type formData struct {
	Error string

	Distance  string
	Unit      string
	MOA       string
	Paper     string
	Thickness string
	Rings     string
	Labels    bool

	Papers []string
}

var formTmpl = template.Must(template.New("form").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Target Generator</title>
</head>
<body>
<h1>Scope Zeroing Target</h1>
{{if .Error}}<p class="error"><strong>{{.Error}}</strong></p>{{end}}
<form method="post" action="/targets">
  <p>
    <label for="distance">Distance:</label>
    <input type="text" id="distance" name="distance" value="{{.Distance}}">
    <select name="unit">
      <option value="yards"{{if eq .Unit "yards"}} selected{{end}}>yards</option>
      <option value="meters"{{if eq .Unit "meters"}} selected{{end}}>meters</option>
    </select>
  </p>
  <p>
    <label for="moa">MOA per grid square:</label>
    <input type="text" id="moa" name="moa" value="{{.MOA}}">
  </p>
  <p>
    <label for="paper">Paper size:</label>
    <select id="paper" name="paper">
      {{range .Papers}}<option value="{{.}}"{{if eq . $.Paper}} selected{{end}}>{{.}}</option>
      {{end}}
    </select>
  </p>
  <p>
    <label for="thickness">Diagonal thickness (inches):</label>
    <input type="text" id="thickness" name="thickness" value="{{.Thickness}}">
  </p>
  <p>
    <label for="rings">Aim rings:</label>
    <input type="text" id="rings" name="rings" value="{{.Rings}}">
  </p>
  <p>
    <label>
      <input type="checkbox" name="labels"{{if .Labels}} checked{{end}}>
      Scope adjustment labels
    </label>
  </p>
  <p><button type="submit">Generate Target</button></p>
</form>
</body>
</html>
`))

// renderForm writes the form page. Validation failures come back through
// here with a 200 status and the error shown inline.
func renderForm(c *fiber.Ctx, data formData) error {
	var buf bytes.Buffer
	if err := formTmpl.Execute(&buf, data); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "form template failed: "+err.Error())
	}
	c.Set("Content-Type", "text/html; charset=utf-8")
	return c.Send(buf.Bytes())
}
