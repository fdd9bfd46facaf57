package web

import "html/template"

const loginTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>webp-batch - login</title>
<style>
body { font-family: sans-serif; max-width: 24rem; margin: 4rem auto; }
input { display: block; margin: 0.5rem 0; padding: 0.4rem; width: 100%; }
.error { color: #b00; }
</style>
</head>
<body>
<h1>webp-batch</h1>
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
<form method="post" action="/login">
<label>Password
<input type="password" name="password" autofocus>
</label>
<input type="submit" value="Log in">
</form>
</body>
</html>
`

const indexTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>webp-batch</title>
<style>
body { font-family: sans-serif; max-width: 32rem; margin: 4rem auto; }
fieldset { margin: 1rem 0; border: 1px solid #ccc; }
label { display: block; margin: 0.5rem 0; }
.error { color: #b00; }
</style>
</head>
<body>
<h1>Convert images to WebP</h1>
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
<form method="post" action="/convert" enctype="multipart/form-data">
<fieldset>
<legend>Images</legend>
<input type="file" name="images" multiple accept="image/*">
</fieldset>
<fieldset>
<legend>Options</legend>
<label>Quality (0-100)
<input type="number" name="quality" min="0" max="100" value="{{.Quality}}">
</label>
<label>Scale factor (0 = keep size)
<input type="number" name="scale" min="0" max="1" step="0.05" value="0">
</label>
<label><input type="checkbox" name="crop"> Crop uniform borders</label>
<label><input type="checkbox" name="white_bg"> Flatten transparency onto white</label>
</fieldset>
<input type="submit" value="Convert">
</form>
<form method="post" action="/logout">
<input type="submit" value="Log out">
</form>
</body>
</html>
`

func parseTemplates() (*template.Template, error) {
	t := template.New("login")
	if _, err := t.Parse(loginTemplate); err != nil {
		return nil, err
	}
	if _, err := t.New("index").Parse(indexTemplate); err != nil {
		return nil, err
	}
	return t, nil
}
