package server

import "net/http"

// handleUI serves the live plan viewer: a single self-contained page that
// re-fetches plan state whenever the event stream signals a change.
func (s *Server) handleUI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(uiPage))
}

const uiPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>strata</title>
<style>
  body { font-family: ui-monospace, SFMono-Regular, Menlo, monospace; margin: 2rem; background: #101418; color: #d8dee4; }
  h1 { font-size: 1.2rem; }
  #status { font-size: 0.8rem; color: #7d8590; }
  select { background: #161b22; color: inherit; border: 1px solid #30363d; padding: 0.2rem; }
  ul { list-style: none; padding-left: 1.2rem; }
  li { margin: 0.15rem 0; }
  .done { color: #3fb950; }
  .open { color: #d8dee4; }
  .current { outline: 1px solid #58a6ff; padding: 0 0.3rem; }
  .level { color: #7d8590; font-size: 0.8rem; }
  .notes { color: #8b949e; font-style: italic; }
</style>
</head>
<body>
<h1>strata <span id="status">connecting…</span></h1>
<label>plan <select id="plans"></select></label>
<div id="goal"></div>
<ul id="tree"></ul>
<script>
let source = null;

async function api(path) {
  const res = await fetch(path);
  const body = await res.json();
  if (!body.success) throw new Error(body.error ? body.error.message : res.status);
  return body.data;
}

function renderTask(t, path, currentPath) {
  const li = document.createElement('li');
  const mark = t.completed ? '[x]' : '[ ]';
  const cls = t.completed ? 'done' : 'open';
  const cur = path === currentPath ? ' current' : '';
  li.innerHTML = '<span class="' + cls + cur + '">' + mark + ' ' + t.description +
    ' <span class="level">(' + t.level + (path ? ' @ ' + path : '') + ')</span></span>' +
    (t.notes ? ' <span class="notes">' + t.notes + '</span>' : '');
  if (t.children && t.children.length) {
    const ul = document.createElement('ul');
    t.children.forEach((c, i) => ul.appendChild(renderTask(c, path + ',' + i, currentPath)));
    li.appendChild(ul);
  }
  return li;
}

async function refresh(id) {
  const plan = await api('/api/plans/' + id);
  document.getElementById('goal').textContent = plan.goal;
  const tree = document.getElementById('tree');
  tree.innerHTML = '';
  const currentPath = (plan.current || []).join(',');
  (plan.root || []).forEach((t, i) => tree.appendChild(renderTask(t, String(i), currentPath)));
}

function watch(id) {
  if (source) source.close();
  source = new EventSource('/api/plans/' + id + '/events');
  const status = document.getElementById('status');
  source.onopen = () => { status.textContent = 'live'; };
  source.onerror = () => { status.textContent = 'disconnected'; };
  source.addEventListener('change', () => refresh(id));
  source.addEventListener('closed', () => { status.textContent = 'plan gone'; source.close(); });
  refresh(id);
}

async function init() {
  const data = await api('/api/plans');
  const select = document.getElementById('plans');
  select.innerHTML = '';
  (data.plans || []).forEach(p => {
    const opt = document.createElement('option');
    opt.value = p.id;
    opt.textContent = p.id + ': ' + p.goal;
    select.appendChild(opt);
  });
  select.onchange = () => watch(select.value);
  if (select.options.length) watch(select.value);
  else document.getElementById('status').textContent = 'no plans yet';
}

init();
</script>
</body>
</html>
`
