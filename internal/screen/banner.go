package screen

// Static banner art. Rendering a banner is pure formatting: styling is
// applied by the caller, no terminal state is touched.

const welcomeBanner = `
 ___ ___ _  _   ___ ___  _  _____ ___
/ __/ __| || | | _ \ _ \| |/ / __| _ \
\__ \__ \ __ | |  _/ (_) | ' <| _||   /
|___/___/_||_| |_|  \___/|_|\_\___|_|_\
`

const mainMenuBanner = `
 __  __   _   ___ _  _   __  __ ___ _  _ _   _
|  \/  | /_\ |_ _| \| | |  \/  | __| \| | | | |
| |\/| |/ _ \ | || .' | | |\/| | _|| .' | |_| |
|_|  |_/_/ \_\___|_|\_| |_|  |_|___|_|\_|\___/
`

const walletBanner = `
__      ___   _    _    ___ _____
\ \    / /_\ | |  | |  | __|_   _|
 \ \/\/ / _ \| |__| |__| _|  | |
  \_/\_/_/ \_\____|____|___| |_|
`

const statsBanner = `
 ___ _____ _ _____ ___ ___ _____ ___ ___ ___
/ __|_   _/_\_   _|_ _/ __|_   _|_ _/ __/ __|
\__ \ | |/ _ \| |  | |\__ \ | |  | | (__\__ \
|___/ |_/_/ \_\_| |___|___/ |_| |___\___|___/
`

const goodbyeBanner = `
  ___  ___   ___  ___  _____   _____ _
 / __|/ _ \ / _ \|   \| _ ) \ / / __| |
| (_ | (_) | (_) | |) | _ \\ V /| _||_|
 \___|\___/ \___/|___/|___/ |_| |___(_)

Thanks for playing
`
