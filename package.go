// Comfybatch drives a ComfyUI backend through a batch of prompts: it loads a
// workflow template once, injects each prompt pair into a fresh copy of the
// graph, queues the result, waits for completion over the websocket event
// stream, and saves the generated images. A failing prompt is logged and
// skipped so one bad item never aborts the batch.
package comfybatch
