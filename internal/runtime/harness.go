package runtime

// Script and harness filenames inside the sandbox workdir.
const (
	HarnessFilename = "runner.py"
	ScriptFilename  = "script.py"
)

// Harness is the Python driver executed around the submitted script. It
// loads the script into a fresh namespace seeded with module-identity
// variables, invokes a callable `main` entry point when one exists, and
// emits a single sentinel line carrying the run outcome.
//
// An asynchronous `main` is driven directly with asyncio.run when no event
// loop is active; when one is, a worker thread hosts an independent loop
// so the entry point runs without re-entering the active loop.
const Harness = `import asyncio
import json
import sys
import threading
import traceback

RESULT_PREFIX = "` + sentinelPrefix + `"


def _invoke_entry_point(namespace):
    entry = namespace.get("main")
    if entry is None or not callable(entry):
        return

    if not asyncio.iscoroutinefunction(entry):
        entry()
        return

    try:
        asyncio.get_running_loop()
    except RuntimeError:
        asyncio.run(entry())
        return

    failure = {}

    def _host_loop():
        try:
            asyncio.run(entry())
        except BaseException as exc:
            failure["exc"] = exc

    worker = threading.Thread(target=_host_loop)
    worker.start()
    worker.join()
    if "exc" in failure:
        raise failure["exc"]


def _emit(payload):
    print(RESULT_PREFIX + json.dumps(payload), flush=True)


def _main():
    path = sys.argv[1]
    with open(path, encoding="utf-8") as handle:
        source = handle.read()

    namespace = {"__name__": "__main__", "__file__": path}
    summary = {
        "operations_performed": 0,
        "tips_used": 0,
        "liquid_transferred": 0.0,
    }

    try:
        exec(compile(source, path, "exec"), namespace)
        _invoke_entry_point(namespace)
    except BaseException as exc:
        traceback.print_exc()
        _emit({"error": "Script execution error: %s" % exc})
        sys.exit(1)

    _emit({"summary": summary, "warnings": []})


if __name__ == "__main__":
    _main()
`
