package vision

// DefaultPrompt instructs chat-style backends to answer with a YAML
// entry list. The instructions are best-effort only: models routinely
// wrap the list in fences or prose, which the extract package recovers
// from.
const DefaultPrompt = `You are looking at an image of a vocabulary list.

Read the image and extract every vocabulary entry you can actually see.
Do not invent words and do not use placeholder text.

Answer with a YAML list, one item per entry:

- word: the word as printed
  back: 'its definition ("example sentence 1", "example sentence 2")'
  tags: part of speech

If you cannot read the image, say so instead of guessing.`
