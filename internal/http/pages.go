package http

import "html/template"

// The shell is deliberately plain HTML: one upload form, one wait page,
// one report page. No static assets to serve or cache.

const indexPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>JournalLM</title>
<style>
body { font-family: Georgia, serif; max-width: 40rem; margin: 4rem auto; padding: 0 1rem; color: #222; }
form { margin-top: 2rem; padding: 2rem; border: 1px dashed #999; border-radius: 8px; }
button { font-size: 1rem; padding: 0.4rem 1.2rem; margin-top: 1rem; }
</style>
</head>
<body>
<h1>JournalLM</h1>
<p>Upload a Day One backup (.zip), a journal export (.json), or a
previously extracted document (.xml) to get personalized insights from
your journal.</p>
<form id="upload" method="post" action="/api/v1/jobs" enctype="multipart/form-data">
<input type="file" name="file" accept=".zip,.json,.xml" required>
<br>
<button type="submit">Get insights</button>
</form>
<script>
document.getElementById("upload").addEventListener("submit", async (ev) => {
  ev.preventDefault();
  const resp = await fetch("/api/v1/jobs", { method: "POST", body: new FormData(ev.target) });
  if (!resp.ok) { alert(await resp.text()); return; }
  const job = await resp.json();
  window.location = "/jobs/" + job.id;
});
</script>
</body>
</html>
`

const processingPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta http-equiv="refresh" content="3">
<title>JournalLM</title>
<style>
body { font-family: Georgia, serif; max-width: 40rem; margin: 4rem auto; padding: 0 1rem; color: #222; }
</style>
</head>
<body>
<h1>Working&hellip;</h1>
<p>Extracting your journal and asking for advice. This page refreshes
itself; large backups can take a minute or two.</p>
</body>
</html>
`

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>JournalLM &mdash; {{.Filename}}</title>
<style>
body { font-family: Georgia, serif; max-width: 44rem; margin: 4rem auto; padding: 0 1rem; color: #222; line-height: 1.5; }
.meta { color: #666; font-size: 0.9rem; border-bottom: 1px solid #ddd; padding-bottom: 1rem; }
.error { color: #a00; }
blockquote { border-left: 3px solid #ccc; margin-left: 0; padding-left: 1rem; color: #444; }
</style>
</head>
<body>
{{if .Error}}
<h1 class="error">Something went wrong</h1>
<p class="error">{{.Error}}</p>
<p><a href="/">Try another file</a></p>
{{else}}
<p class="meta">{{.Filename}}: {{.Entries}} entries from {{.Journals}} journal(s){{if .Skipped}}, {{.Skipped}} file(s) skipped{{end}}{{if .Truncated}}, older entries truncated to fit the model&rsquo;s context window{{end}}
&middot; <a href="/jobs/{{.JobID}}/journal.xml">download XML</a></p>
{{if .Document}}
<p>Insights are disabled on this server. Your extracted journal
document is ready to download above.</p>
{{else}}
{{.Body}}
{{end}}
{{end}}
</body>
</html>
`))
