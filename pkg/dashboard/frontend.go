package dashboard

import "net/http"

func (d *Dashboard) serveFrontend(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(frontendHTML))
}

const frontendHTML = `<!DOCTYPE html>
<html lang="en"><head>
<meta charset="utf-8"><meta name="viewport" content="width=device-width,initial-scale=1">
<title>Wallet Hunter</title>
<style>
:root{--bg:#08090d;--sf:#0f1118;--bd:#252a3a;--tx:#c8cdd8;--tx2:#8891a5;--ac:#3b82f6;--gn:#10b981}
*{margin:0;padding:0;box-sizing:border-box}
body{font-family:monospace;background:var(--bg);color:var(--tx);padding:20px 24px}
h1{font-size:20px;margin-bottom:18px;color:var(--ac)}
h2{font-size:13px;margin:22px 0 8px;color:var(--tx2);text-transform:uppercase;letter-spacing:1px}
.sts{display:grid;grid-template-columns:repeat(auto-fit,minmax(140px,1fr));gap:10px}
.st{background:var(--sf);border:1px solid var(--bd);border-radius:8px;padding:12px}
.st b{display:block;font-size:22px;color:var(--gn)}
.st span{font-size:10px;color:var(--tx2)}
table{width:100%;border-collapse:collapse;font-size:12px}
td,th{padding:6px 8px;border-bottom:1px solid var(--bd);text-align:left}
th{color:var(--tx2);font-weight:400}
</style></head><body>
<h1>Wallet Hunter</h1>
<div class="sts" id="stats"></div>
<h2>Recent harvests</h2>
<table><thead><tr><th>When</th><th>Token</th><th>List</th><th>Blocks</th><th>Added</th><th>Complete</th></tr></thead><tbody id="harvests"></tbody></table>
<h2>Recent tracking hits</h2>
<table><thead><tr><th>When</th><th>Token</th><th>Buyers</th></tr></thead><tbody id="hits"></tbody></table>
<script>
const esc=s=>String(s).replace(/[&<>"]/g,c=>({'&':'&amp;','<':'&lt;','>':'&gt;','"':'&quot;'}[c]));
const when=t=>new Date(t).toLocaleString();
async function load(){
  const [stats,harvests,hits]=await Promise.all(['/api/stats','/api/harvests','/api/hits'].map(u=>fetch(u).then(r=>r.json())));
  document.getElementById('stats').innerHTML=Object.entries(stats).map(([k,v])=>'<div class="st"><b>'+v+'</b><span>'+esc(k.replace('_',' '))+'</span></div>').join('');
  document.getElementById('harvests').innerHTML=harvests.map(h=>'<tr><td>'+when(h.created_at)+'</td><td>'+esc(h.token)+'</td><td>'+esc(h.direction+'_'+h.label)+'</td><td>'+h.start_block+'-'+h.end_block+'</td><td>'+h.added+'</td><td>'+h.complete+'</td></tr>').join('');
  document.getElementById('hits').innerHTML=hits.map(h=>'<tr><td>'+when(h.created_at)+'</td><td>'+esc(h.token)+'</td><td>'+esc((h.buyers||[]).join(' | '))+'</td></tr>').join('');
}
load();setInterval(load,30000);
</script>
</body></html>`
