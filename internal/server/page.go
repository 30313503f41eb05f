package server

const indexPage = `<!DOCTYPE html>
<html lang="ru">
<head>
<meta charset="utf-8">
<title>Вопросы по конспектам</title>
<style>
body { font-family: sans-serif; max-width: 760px; margin: 40px auto; padding: 0 16px; }
textarea { width: 100%; height: 80px; }
#answer { white-space: pre-wrap; margin-top: 16px; }
.citation { color: #555; font-size: 0.9em; }
</style>
</head>
<body>
<h1>Вопросы по конспектам лекций</h1>
<textarea id="question" placeholder="Задайте вопрос"></textarea>
<button id="ask">Спросить</button>
<div id="answer"></div>
<div id="citations"></div>
<script>
document.getElementById("ask").onclick = async () => {
  const question = document.getElementById("question").value;
  const answer = document.getElementById("answer");
  const citations = document.getElementById("citations");
  answer.textContent = "...";
  citations.innerHTML = "";
  const resp = await fetch("/api/ask", {
    method: "POST",
    headers: { "Content-Type": "application/json" },
    body: JSON.stringify({ question }),
  });
  const data = await resp.json();
  if (!resp.ok) {
    answer.textContent = data.error;
    return;
  }
  answer.textContent = data.answer;
  for (const c of data.citations) {
    const p = document.createElement("p");
    p.className = "citation";
    p.textContent = c.file + ", стр. " + c.page + ": " + c.text;
    citations.appendChild(p);
  }
};
</script>
</body>
</html>
`
