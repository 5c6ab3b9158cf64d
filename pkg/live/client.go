package live

// ClientScript connects a page rendered with a data-live attribute on the
// #fightweb container to its session and keeps the surface and overlay
// in sync with server frames.
const ClientScript = `(function () {
  var root = document.getElementById("fightweb");
  var host = document.getElementById("fightweb-overlay");
  if (!root || !root.dataset.live) return;
  var proto = location.protocol === "https:" ? "wss://" : "ws://";
  var ws = new WebSocket(proto + location.host + root.dataset.live);
  var replacing = false;

  function send(e) {
    if (ws.readyState === 1) ws.send(JSON.stringify(e));
  }
  function local(ev) {
    var r = root.getBoundingClientRect();
    return { x: ev.clientX - r.left, y: ev.clientY - r.top };
  }
  function nodeId(el) {
    return el && el.getAttribute && el.closest("[data-id]") && !host.contains(el)
      ? el.closest("[data-id]").getAttribute("data-id") : "";
  }

  ws.onopen = function () {
    var r = root.getBoundingClientRect();
    send({ type: "resize", width: r.width, height: r.height || 600 });
  };
  ws.onmessage = function (msg) {
    var f = JSON.parse(msg.data);
    if (f.type !== "frame") return;
    if (f.svg) {
      var active = nodeId(document.activeElement);
      var old = root.querySelector("svg");
      replacing = true;
      if (old) old.outerHTML = f.svg; else root.insertAdjacentHTML("afterbegin", f.svg);
      if (active) {
        var el = root.querySelector('svg [data-id="' + CSS.escape(active) + '"]');
        if (el) el.focus();
      }
      replacing = false;
    }
    if (f.overlay_changed) {
      if (!f.overlay) { host.innerHTML = ""; return; }
      host.innerHTML = f.overlay.html;
      var panel = host.firstElementChild;
      if (panel) {
        send({ type: "measure", width: panel.offsetWidth, height: panel.offsetHeight });
        if (f.overlay.focus) {
          var first = panel.querySelector("button");
          if (first) first.focus();
        }
      }
    }
  };

  root.addEventListener("pointerdown", function (ev) {
    if (host.contains(ev.target)) return;
    var p = local(ev);
    root.setPointerCapture(ev.pointerId);
    send({ type: "pointerdown", pointer: ev.pointerId, x: p.x, y: p.y });
  });
  root.addEventListener("pointermove", function (ev) {
    if (!root.hasPointerCapture(ev.pointerId)) return;
    var p = local(ev);
    send({ type: "pointermove", pointer: ev.pointerId, x: p.x, y: p.y });
  });
  root.addEventListener("pointerup", function (ev) {
    if (!root.hasPointerCapture(ev.pointerId)) return;
    var p = local(ev);
    send({ type: "pointerup", pointer: ev.pointerId, x: p.x, y: p.y });
  });
  root.addEventListener("pointercancel", function (ev) {
    if (!root.hasPointerCapture(ev.pointerId)) return;
    send({ type: "pointercancel", pointer: ev.pointerId });
  });
  root.addEventListener("wheel", function (ev) {
    if (host.contains(ev.target)) return;
    ev.preventDefault();
    var p = local(ev);
    send({ type: "wheel", x: p.x, y: p.y, delta: ev.deltaY });
  }, { passive: false });

  root.addEventListener("pointerover", function (ev) {
    var id = nodeId(ev.target);
    if (id && nodeId(ev.relatedTarget) !== id) send({ type: "enter", id: id });
  });
  root.addEventListener("pointerout", function (ev) {
    var id = nodeId(ev.target);
    if (id && nodeId(ev.relatedTarget) !== id) send({ type: "leave", id: id });
  });
  root.addEventListener("focusin", function (ev) {
    if (replacing) return;
    if (host.contains(ev.target)) { send({ type: "overlayenter" }); return; }
    var id = nodeId(ev.target);
    if (id) send({ type: "focus", id: id });
  });
  root.addEventListener("focusout", function (ev) {
    if (replacing) return;
    if (host.contains(ev.target)) {
      if (!host.contains(ev.relatedTarget)) send({ type: "overlayleave" });
      return;
    }
    var id = nodeId(ev.target);
    if (id) send({ type: "blur", id: id });
  });
  host.addEventListener("pointerenter", function () { send({ type: "overlayenter" }); });
  host.addEventListener("pointerleave", function () { send({ type: "overlayleave" }); });
  host.addEventListener("click", function (ev) {
    var b = ev.target.closest("[data-action]");
    if (b) send({ type: "action", action: b.getAttribute("data-action"), id: b.getAttribute("data-id") || "" });
  });

  root.addEventListener("keydown", function (ev) {
    if (ev.key === "Tab") return;
    if (host.contains(ev.target) && ev.key !== "Escape") return;
    if (/^(Arrow|Escape|Enter| |\+|=|-|_|0|f)/.test(ev.key)) ev.preventDefault();
    send({ type: "key", key: ev.key });
  });
  window.addEventListener("resize", function () {
    var r = root.getBoundingClientRect();
    send({ type: "resize", width: r.width, height: r.height });
  });
})();
`
