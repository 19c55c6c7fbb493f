package server

// DashboardHTML is the embedded single-page dashboard. It connects to /ws
// for live decision events and drives the simulation endpoint with a small
// form, so algorithm behavior can be watched over time without extra tooling.
const DashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Rate Limiting Demo</title>
<style>
  * { margin: 0; padding: 0; box-sizing: border-box; }
  body {
    font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, monospace;
    background: #10141a; color: #d5dbe3; padding: 20px;
  }
  h1 { color: #4ea1ff; font-size: 1.4em; margin-bottom: 2px; }
  .subtitle { color: #8594a6; margin-bottom: 18px; font-size: 0.9em; }
  .panel {
    background: #181e26; border: 1px solid #2a323d; border-radius: 6px;
    padding: 14px 16px; margin-bottom: 16px;
  }
  .controls { display: flex; gap: 10px; flex-wrap: wrap; align-items: flex-end; }
  .field { display: flex; flex-direction: column; gap: 4px; }
  .field label { font-size: 0.72em; color: #8594a6; text-transform: uppercase; }
  select, input {
    background: #10141a; color: #d5dbe3; border: 1px solid #2a323d;
    border-radius: 4px; padding: 6px 8px; font-family: inherit;
  }
  button {
    background: #1d4f8b; color: #e8eef5; border: none; border-radius: 4px;
    padding: 7px 16px; cursor: pointer; font-family: inherit;
  }
  button:hover { background: #2563ad; }
  .stats { display: flex; gap: 12px; margin-bottom: 16px; }
  .stat { flex: 1; text-align: center; background: #181e26; border: 1px solid #2a323d;
          border-radius: 6px; padding: 12px; }
  .stat .n { font-size: 1.8em; font-weight: 700; }
  .n.allowed { color: #41c463; } .n.denied { color: #ee5a52; } .n.total { color: #4ea1ff; }
  .stat .l { font-size: 0.75em; color: #8594a6; }
  #conn { float: right; font-size: 0.8em; }
  #conn.up { color: #41c463; } #conn.down { color: #ee5a52; }
  .events { max-height: 420px; overflow-y: auto; }
  .row {
    display: grid; grid-template-columns: 110px 130px 1fr 70px 110px;
    padding: 6px 10px; border-bottom: 1px solid #212933; font-size: 0.84em;
    align-items: center;
  }
  .badge { padding: 1px 8px; border-radius: 10px; font-size: 0.78em; font-weight: 600; }
  .badge.ok { background: #1d3527; color: #41c463; }
  .badge.no { background: #3a2022; color: #ee5a52; }
  .algo { color: #c99bf2; } .key { color: #7fb8f0; } .muted { color: #8594a6; }
  .empty { text-align: center; color: #8594a6; padding: 40px; }
</style>
</head>
<body>
<h1>Rate Limiting Demo <span id="conn" class="down">offline</span></h1>
<p class="subtitle">Live admission decisions and simulation traces</p>

<div class="panel">
  <div class="controls">
    <div class="field">
      <label>Algorithm</label>
      <select id="algo">
        <option value="fixed_window">Fixed window</option>
        <option value="sliding_window">Sliding window</option>
        <option value="token_bucket">Token bucket</option>
      </select>
    </div>
    <div class="field">
      <label>Requests (1-100)</label>
      <input id="reqs" type="number" min="1" max="100" value="20">
    </div>
    <div class="field">
      <label>Delay ms (0-5000)</label>
      <input id="delay" type="number" min="0" max="5000" value="0">
    </div>
    <button onclick="runSimulation()">Run simulation</button>
    <span id="sim-status" class="muted"></span>
  </div>
</div>

<div class="stats">
  <div class="stat"><div class="n total" id="s-total">0</div><div class="l">Total</div></div>
  <div class="stat"><div class="n allowed" id="s-allowed">0</div><div class="l">Allowed</div></div>
  <div class="stat"><div class="n denied" id="s-denied">0</div><div class="l">Denied</div></div>
</div>

<div class="panel events" id="events">
  <div class="empty">No decisions yet. Hit /api/check/{algorithm}/{key} or run a simulation.</div>
</div>

<script>
let total = 0, allowed = 0, denied = 0;
const MAX_ROWS = 250;
const events = document.getElementById('events');

function connect() {
  const proto = location.protocol === 'https:' ? 'wss:' : 'ws:';
  const ws = new WebSocket(proto + '//' + location.host + '/ws');
  ws.onopen = () => setConn(true);
  ws.onclose = () => { setConn(false); setTimeout(connect, 2000); };
  ws.onmessage = (e) => addRow(JSON.parse(e.data));
}

function setConn(up) {
  const el = document.getElementById('conn');
  el.textContent = up ? 'live' : 'offline';
  el.className = up ? 'up' : 'down';
}

function addRow(ev) {
  const empty = events.querySelector('.empty');
  if (empty) empty.remove();

  total++;
  if (ev.allowed) allowed++; else denied++;
  document.getElementById('s-total').textContent = total;
  document.getElementById('s-allowed').textContent = allowed;
  document.getElementById('s-denied').textContent = denied;

  const row = document.createElement('div');
  row.className = 'row';
  const t = new Date(ev.time).toLocaleTimeString('en-US', {hour12:false});
  const badge = ev.allowed ? '<span class="badge ok">ALLOW</span>' : '<span class="badge no">DENY</span>';
  const extra = ev.allowed ? ev.remaining + '/' + ev.limit
                           : 'retry ' + ev.retry_after_ms + 'ms';
  row.innerHTML =
    '<span class="muted">' + t + '</span>' +
    '<span class="algo">' + esc(ev.algorithm) + '</span>' +
    '<span class="key">' + esc(ev.key) + '</span>' +
    '<span>' + badge + '</span>' +
    '<span class="muted">' + extra + '</span>';
  events.insertBefore(row, events.firstChild);
  while (events.children.length > MAX_ROWS) events.removeChild(events.lastChild);
}

async function runSimulation() {
  const status = document.getElementById('sim-status');
  status.textContent = 'running...';
  const body = {
    algorithm: document.getElementById('algo').value,
    requests: parseInt(document.getElementById('reqs').value, 10),
    delay_ms: parseInt(document.getElementById('delay').value, 10),
  };
  try {
    const res = await fetch('/api/simulate', {
      method: 'POST',
      headers: {'Content-Type': 'application/json'},
      body: JSON.stringify(body),
    });
    const out = await res.json();
    status.textContent = res.ok
      ? out.allowed + ' allowed, ' + out.denied + ' denied'
      : 'error: ' + out.error;
  } catch (err) {
    status.textContent = 'error: ' + err;
  }
}

function esc(s) {
  const d = document.createElement('div');
  d.textContent = s;
  return d.innerHTML;
}

connect();
</script>
</body>
</html>`
