package server

import "net/http"

// miniPage is a minimal stand-in for the Telegram Mini App form: paste a
// text, POST it to /api/analyze, render the sources.
const miniPage = `<!doctype html>
<html lang="ru">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>FindOrigin</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 640px; margin: 2rem auto; padding: 0 1rem; }
textarea { width: 100%; min-height: 8rem; }
li { margin-bottom: .5rem; }
.msg { color: #555; }
</style>
</head>
<body>
<h1>FindOrigin</h1>
<p>Вставьте текст — найдём возможные источники.</p>
<textarea id="text" placeholder="Текст или утверждение…"></textarea>
<p><button id="go">Найти источники</button></p>
<div id="out"></div>
<script>
document.getElementById('go').addEventListener('click', async () => {
  const out = document.getElementById('out');
  out.textContent = 'Обрабатываю…';
  const res = await fetch('/api/analyze', {
    method: 'POST',
    headers: {'Content-Type': 'application/json'},
    body: JSON.stringify({text: document.getElementById('text').value}),
  });
  const data = await res.json();
  if (!res.ok) { out.textContent = data.error || 'Ошибка'; return; }
  let html = '';
  if (data.summary) html += '<p>' + data.summary + '</p>';
  if (data.message) html += '<p class="msg">' + data.message + '</p>';
  if (data.sources.length) {
    html += '<ol>' + data.sources.map(s =>
      '<li><a href="' + s.url + '">' + s.title + '</a> — ' + s.confidence + '</li>'
    ).join('') + '</ol>';
  }
  out.innerHTML = html;
});
</script>
</body>
</html>`

func (s *Server) handleMiniPage(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(miniPage)) //nolint:errcheck
}
