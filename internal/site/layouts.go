package site

// Embedded default layout shell. Users can override any of these through
// build.template_dir; the build report records which source won.

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{ if .Title }}{{ .Title }} - {{ end }}{{ .SiteTitle }}</title>
{{ if .Description }}<meta name="description" content="{{ .Description }}">
{{ else if .SiteDescription }}<meta name="description" content="{{ .SiteDescription }}">
{{ end }}<link rel="stylesheet" href="{{ .Root }}static/guide.css">
<script defer src="{{ .Root }}static/search.js"></script>
{{ if .HasMermaid }}<script type="module">
import mermaid from "https://cdn.jsdelivr.net/npm/mermaid@11/dist/mermaid.esm.min.mjs";
mermaid.initialize({ startOnLoad: true });
</script>
{{ end }}</head>
<body>
{{ if .Banner }}<div class="banner">{{ .Banner }}</div>
{{ end }}<header class="topbar">
  <a class="site-title" href="{{ .Root }}">{{ .SiteTitle }}</a>
  <div class="search">
    <input id="search-input" type="search" placeholder="Search…" autocomplete="off"
           data-index="{{ .Root }}search-index.json">
    <ul id="search-results" hidden></ul>
  </div>
</header>
<div class="layout">
<nav class="sidebar" aria-label="Site">
{{ .Sidebar }}
</nav>
<main>
{{ if .Breadcrumbs }}<nav class="breadcrumbs" aria-label="Breadcrumb">
  {{ range $i, $c := .Breadcrumbs }}{{ if $i }}<span class="sep">/</span>{{ end }}{{ if $c.Last }}<span aria-current="page">{{ $c.Title }}</span>{{ else }}<a href="{{ $c.Href }}">{{ $c.Title }}</a>{{ end }}{{ end }}
</nav>
{{ end }}<article class="content">
{{ if not .TitleInBody }}<h1>{{ .Title }}</h1>
{{ end }}{{ .Content }}
</article>
{{ if or .Prev .Next }}<nav class="pager">
  {{ if .Prev }}<a class="prev" href="{{ .Prev.Href }}" rel="prev">&larr; {{ .Prev.Title }}</a>{{ end }}
  {{ if .Next }}<a class="next" href="{{ .Next.Href }}" rel="next">{{ .Next.Title }} &rarr;</a>{{ end }}
</nav>
{{ end }}{{ if .EditURL }}<p class="edit-link"><a href="{{ .EditURL }}" rel="nofollow">Edit this page</a></p>
{{ end }}</main>
{{ if .TOC }}<aside class="toc" aria-label="On this page">
<h2>On this page</h2>
<ul>
{{ range .TOC }}<li class="toc-l{{ .Level }}"><a href="#{{ .ID }}">{{ .Text }}</a></li>
{{ end }}</ul>
</aside>
{{ end }}</div>
<footer>
  <p>Generated with guidebuilder {{ .Version }}</p>
</footer>
</body>
</html>`

const notFoundTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Page not found - {{ .SiteTitle }}</title>
<link rel="stylesheet" href="{{ .Root }}static/guide.css">
</head>
<body>
<header class="topbar">
  <a class="site-title" href="{{ .Root }}">{{ .SiteTitle }}</a>
</header>
<main class="notfound">
  <h1>404</h1>
  <p>This page does not exist. <a href="{{ .Root }}">Back to {{ .SiteTitle }}</a>.</p>
</main>
</body>
</html>`

const defaultStylesheet = `:root {
  --fg: #24292f;
  --muted: #57606a;
  --accent: #0969da;
  --border: #d0d7de;
  --bg-subtle: #f6f8fa;
  --banner-bg: #fff8c5;
}
* { box-sizing: border-box; }
body {
  font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
  line-height: 1.6;
  margin: 0;
  color: var(--fg);
}
.banner {
  background: var(--banner-bg);
  border-bottom: 1px solid var(--border);
  padding: 0.5rem 1.5rem;
  font-size: 0.9em;
}
.topbar {
  display: flex;
  align-items: center;
  justify-content: space-between;
  border-bottom: 1px solid var(--border);
  padding: 0.75rem 1.5rem;
}
.site-title {
  font-weight: 600;
  font-size: 1.1em;
  color: var(--fg);
  text-decoration: none;
}
.search { position: relative; }
.search input {
  border: 1px solid var(--border);
  border-radius: 6px;
  padding: 0.35rem 0.6rem;
  min-width: 220px;
}
.search ul {
  position: absolute;
  right: 0;
  top: 2.2rem;
  min-width: 280px;
  max-height: 320px;
  overflow-y: auto;
  margin: 0;
  padding: 0.25rem;
  list-style: none;
  background: #fff;
  border: 1px solid var(--border);
  border-radius: 6px;
  box-shadow: 0 4px 12px rgba(0,0,0,0.08);
  z-index: 10;
}
.search li a {
  display: block;
  padding: 0.35rem 0.6rem;
  color: var(--fg);
  text-decoration: none;
  border-radius: 4px;
}
.search li a:hover { background: var(--bg-subtle); }
.search .section { color: var(--muted); font-size: 0.85em; margin-left: 0.4rem; }
.layout {
  display: grid;
  grid-template-columns: 260px minmax(0, 1fr) 220px;
  gap: 2rem;
  max-width: 1400px;
  margin: 0 auto;
  padding: 1.5rem;
}
.sidebar ul { list-style: none; margin: 0; padding-left: 0; }
.sidebar ul ul { padding-left: 1rem; }
.sidebar a {
  display: block;
  padding: 0.2rem 0.5rem;
  color: var(--muted);
  text-decoration: none;
  border-radius: 4px;
}
.sidebar a:hover { color: var(--fg); background: var(--bg-subtle); }
.sidebar a.active { color: var(--accent); font-weight: 600; }
.sidebar .section-label { font-weight: 600; color: var(--fg); }
.breadcrumbs { color: var(--muted); font-size: 0.9em; margin-bottom: 1rem; }
.breadcrumbs .sep { margin: 0 0.4rem; }
.breadcrumbs a { color: var(--muted); }
.content { min-width: 0; }
.content h1 { margin-top: 0; }
.content pre {
  background: var(--bg-subtle);
  border: 1px solid var(--border);
  border-radius: 6px;
  padding: 1rem;
  overflow-x: auto;
}
.content code {
  background: var(--bg-subtle);
  padding: 0.15rem 0.35rem;
  border-radius: 4px;
  font-size: 0.9em;
}
.content pre code { background: none; padding: 0; }
.content pre.mermaid { background: #fff; text-align: center; }
.content table { border-collapse: collapse; }
.content th, .content td { border: 1px solid var(--border); padding: 0.4rem 0.75rem; }
.content th { background: var(--bg-subtle); }
.content blockquote {
  border-left: 3px solid var(--border);
  margin-left: 0;
  padding-left: 1rem;
  color: var(--muted);
}
.pager {
  display: flex;
  justify-content: space-between;
  margin-top: 2.5rem;
  border-top: 1px solid var(--border);
  padding-top: 1rem;
}
.pager a { color: var(--accent); text-decoration: none; }
.pager .next { margin-left: auto; }
.edit-link { font-size: 0.85em; }
.edit-link a { color: var(--muted); }
.toc { font-size: 0.9em; }
.toc h2 { font-size: 0.85em; text-transform: uppercase; color: var(--muted); }
.toc ul { list-style: none; margin: 0; padding: 0; }
.toc li.toc-l3 { padding-left: 1rem; }
.toc a { color: var(--muted); text-decoration: none; }
.toc a:hover { color: var(--fg); }
.notfound { max-width: 600px; margin: 4rem auto; text-align: center; }
footer {
  border-top: 1px solid var(--border);
  color: var(--muted);
  font-size: 0.85em;
  padding: 1rem 1.5rem;
  max-width: 1400px;
  margin: 0 auto;
}
@media (max-width: 1100px) {
  .layout { grid-template-columns: 240px minmax(0, 1fr); }
  .toc { display: none; }
}
@media (max-width: 760px) {
  .layout { grid-template-columns: minmax(0, 1fr); }
  .sidebar { order: 2; }
}
`

const searchScript = `(function () {
  "use strict";
  var input = document.getElementById("search-input");
  var results = document.getElementById("search-results");
  if (!input || !results) return;

  var index = null;

  function load() {
    if (index !== null) return Promise.resolve(index);
    return fetch(input.dataset.index)
      .then(function (resp) { return resp.json(); })
      .then(function (data) { index = data.pages || []; return index; })
      .catch(function () { index = []; return index; });
  }

  function render(matches) {
    results.innerHTML = "";
    if (matches.length === 0) {
      results.hidden = true;
      return;
    }
    matches.slice(0, 10).forEach(function (page) {
      var li = document.createElement("li");
      var a = document.createElement("a");
      a.href = page.route;
      a.textContent = page.title;
      if (page.section) {
        var span = document.createElement("span");
        span.className = "section";
        span.textContent = page.section;
        a.appendChild(span);
      }
      li.appendChild(a);
      results.appendChild(li);
    });
    results.hidden = false;
  }

  input.addEventListener("input", function () {
    var q = input.value.trim().toLowerCase();
    if (q.length < 2) {
      results.hidden = true;
      return;
    }
    load().then(function (pages) {
      render(pages.filter(function (page) {
        return (page.title || "").toLowerCase().indexOf(q) !== -1 ||
               (page.text || "").toLowerCase().indexOf(q) !== -1;
      }));
    });
  });

  document.addEventListener("click", function (ev) {
    if (!results.contains(ev.target) && ev.target !== input) {
      results.hidden = true;
    }
  });
})();
`
