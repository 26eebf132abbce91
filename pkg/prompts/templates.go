package prompts

const (
	// CinematicTags クオリティ向上のための共通タグ
	CinematicTags = "cinematic composition, high resolution, sharp focus, 8k"

	// RecastNegativePrompt Negative Prompt の定義
	RecastNegativePrompt = "speech bubble, text, alphabet, letters, words, signatures, watermark, username, low quality, distorted, bad anatomy, extra fingers, duplicated face"

	// CharacterDescriptorInstruction は被写体スロットの記述子抽出指示です。
	// 顔の再現性が命なので、顔パーツを最優先で言語化させるのだ。
	CharacterDescriptorInstruction = `Describe the person or character in this image for the purpose of reproducing them faithfully in new generated images.
Be obsessive about the FACE first: exact eye shape and color, eyebrows, nose, lips, jawline and face shape.
Then cover: hairstyle and hair color, skin tone, body build, clothing and accessories, and the art style of the image itself.
Respond with ONE dense paragraph of comma-separated visual features. No preamble, no opinions, no names.`

	// PropDescriptorInstruction は小道具スロットの記述子抽出指示です。
	PropDescriptorInstruction = `Describe the object in this image so it can be reproduced exactly in new generated images.
Cover: material, texture, shape, proportions, colors, and any distinctive markings or wear.
Respond with ONE dense paragraph of comma-separated visual features. No preamble.`

	// BackgroundDescriptorInstruction は背景スロットの記述子抽出指示です。
	BackgroundDescriptorInstruction = `Describe the location in this image so it can be recreated as the setting of new generated images.
Cover: the type of place, architecture or terrain, time of day, lighting, weather, and overall mood.
Respond with ONE dense paragraph of comma-separated visual features. No preamble.`

	// NeutralStudioClause は背景未指定時のフォールバック環境です。
	// シーン間の比較可能性を保つため、毎回同じ無地環境に固定するのだ。
	NeutralStudioClause = `### ENVIRONMENT ###
- SETTING: A neutral, softly lit photography studio with a plain seamless backdrop, soft focus.
- CONSTRAINT: Keep the environment minimal and identical in feel across scenes. The subject is the focus.`

	// CameraEmphasis はシーン本文のカメラ・構図指定を厳守させる一文です。
	CameraEmphasis = "Follow the camera angle and framing in the scene direction EXACTLY."

	// MatchReferenceStyle は明示スタイル未指定時の画風指示です。
	MatchReferenceStyle = "Match the art style, rendering technique and color palette of reference image #1 exactly."
)

// ExpressionVocabulary はシーンごとに 1 つサンプリングされる表情語彙です。
var ExpressionVocabulary = [10]string{
	"a bright joyful smile",
	"a calm, composed expression",
	"a determined, focused gaze",
	"a surprised, wide-eyed look",
	"a gentle, warm smile",
	"a thoughtful, pensive expression",
	"a confident smirk",
	"a shy, bashful expression",
	"an excited, energetic grin",
	"a serene, peaceful expression",
}
