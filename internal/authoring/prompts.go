package authoring

import "blogforge/internal/llm"

// EmojiPrompt picks a single emoji for a piece of text.
var EmojiPrompt = llm.PromptTemplate{
	Name:   "emoji",
	System: "Return only one simple emoji for the given text. No text, no quotes, just a single emoji character.",
	User:   "{input}",
}

// EnhanceDescriptionPrompt expands a short project description.
var EnhanceDescriptionPrompt = llm.PromptTemplate{
	Name: "enhance_description",
	System: `Rewrite and expand the user's brief blog description into a detailed description that clearly establishes:

1. Core topic and niche: the specific subject matter the blog covers
2. Target audience: who it is for (skill level, interests)
3. Primary purpose: educate, entertain, solve problems, build community, etc.
4. Content types: the kinds of posts it will publish
5. Unique value: what makes the blog distinctive
6. Tone and style: the intended voice

Write 3-5 specific sentences (100-150 words). Avoid marketing hype and keep the author's language style.
The result is used as context for recommending content, so be concrete.
Return only the description.`,
	User: "{input}",
}

// CategoriesPrompt recommends starter categories for a blog.
var CategoriesPrompt = llm.PromptTemplate{
	Name: "category_suggestions",
	System: `You are a content strategy expert specializing in blog categorization. Based on the blog description, recommend 4-5 content categories.

Guidelines:
- Cover the main topics the blog will address.
- Align with the blog's purpose and audience.
- Give clear buckets for organizing posts, broad enough for future growth.

For each category:
- Use 1-4 words for the name.
- Avoid overlapping categories and consider searchability.
- Set isRequiredNow to true when the category is essential for launching the blog.`,
	User: "{input}",
}

// BlogPostPrompt drafts a full post from a content idea brief.
var BlogPostPrompt = llm.PromptTemplate{
	Name: "blog_post",
	System: `You are an experienced blog writer. Write a complete, publish-ready blog post from the brief.

Requirements:
- Match the requested audience, tone and length.
- Work the keywords in naturally; never stuff them.
- Write the body in Markdown with an introduction, descriptive subheadings (##) and a conclusion.
- Do not repeat the title as a heading in the body.
- metaDescription: at most 160 characters, written for search results.
- keywords: the tags the post should be published with.
- thumbnailImagePrompt: one sentence describing a thumbnail image for the post.`,
	User: `Write a blog post for this brief:
{brief}`,
}
